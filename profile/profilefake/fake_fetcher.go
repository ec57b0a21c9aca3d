package profilefake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-desktop/profile"
)

type Call struct {
	BaseURL     string
	AccessToken string
	PersonID    int
}

// FakeFetcher serves a canned profile and picture.
type FakeFetcher struct {
	lock sync.RWMutex

	User       *profile.UserProfile
	Picture    string
	UserErr    error
	PictureErr error

	// PrincipalGate, when set, blocks FetchPrincipal until it is closed.
	PrincipalGate chan struct{}
	// ImageGate, when set, blocks FetchImage until it is closed.
	ImageGate chan struct{}

	PrincipalCalls []Call
	ImageCalls     []Call
}

func (f *FakeFetcher) FetchPrincipal(ctx context.Context, baseURL, accessToken string) (*profile.UserProfile, error) {
	f.lock.Lock()
	f.PrincipalCalls = append(f.PrincipalCalls, Call{BaseURL: baseURL, AccessToken: accessToken})
	gate := f.PrincipalGate
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.UserErr != nil {
		return nil, f.UserErr
	}
	u := *f.User
	return &u, nil
}

func (f *FakeFetcher) FetchImage(ctx context.Context, baseURL, accessToken string, personID int) (string, error) {
	f.lock.Lock()
	f.ImageCalls = append(f.ImageCalls, Call{BaseURL: baseURL, AccessToken: accessToken, PersonID: personID})
	gate := f.ImageGate
	f.lock.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.lock.RLock()
	defer f.lock.RUnlock()
	if f.PictureErr != nil {
		return "", f.PictureErr
	}
	return f.Picture, nil
}

func (f *FakeFetcher) Calls() (principal, image []Call) {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return append([]Call(nil), f.PrincipalCalls...), append([]Call(nil), f.ImageCalls...)
}
