package authflowfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-desktop/authflow"
)

// FakeAuthSession records calls and lets tests drive token responses.
type FakeAuthSession struct {
	lock sync.RWMutex

	loggedIn  bool
	info      *authflow.TenantInfo
	listeners []func()
	failures  []func(error)

	DiscoveryErr error
	AuthorizeErr error
	TokensErr    error
	SignOutErr   error

	DiscoveryCalls int
	AuthorizeCalls int
	SignOutCalls   int
	Usernames      []string
}

func NewFakeAuthSession() *FakeAuthSession {
	return &FakeAuthSession{}
}

func (s *FakeAuthSession) LoggedIn() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.loggedIn
}

func (s *FakeAuthSession) FetchServiceConfiguration(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.DiscoveryCalls++
	return s.DiscoveryErr
}

func (s *FakeAuthSession) MakeAuthorizationRequest(_ context.Context, username string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.AuthorizeCalls++
	s.Usernames = append(s.Usernames, username)
	return s.AuthorizeErr
}

func (s *FakeAuthSession) PerformWithFreshTokens(context.Context) (*authflow.TenantInfo, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.TokensErr != nil {
		return nil, s.TokensErr
	}
	if !s.loggedIn || s.info == nil {
		return nil, authflow.ErrNotSignedIn
	}
	info := *s.info
	return &info, nil
}

func (s *FakeAuthSession) SignOut(context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.SignOutCalls++
	s.loggedIn = false
	s.info = nil
	return s.SignOutErr
}

func (s *FakeAuthSession) OnTokenResponse(fn func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.listeners = append(s.listeners, fn)
}

// CompleteSignIn stores info as the session and fires the token response listeners.
func (s *FakeAuthSession) CompleteSignIn(info authflow.TenantInfo) {
	s.lock.Lock()
	s.loggedIn = true
	s.info = &info
	listeners := append([]func(){}, s.listeners...)
	s.lock.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *FakeAuthSession) OnAuthorizationFailure(fn func(error)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures = append(s.failures, fn)
}

// FailSignIn fires the authorization failure listeners with err.
func (s *FakeAuthSession) FailSignIn(err error) {
	s.lock.RLock()
	listeners := append([]func(error){}, s.failures...)
	s.lock.RUnlock()

	for _, fn := range listeners {
		fn(err)
	}
}
