package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-auth-desktop/authflow"
	"github.com/jrsteele09/go-auth-desktop/hostbridge"
	"github.com/jrsteele09/go-auth-desktop/internal/config"
	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/jrsteele09/go-auth-desktop/profile"
	"github.com/jrsteele09/go-auth-desktop/view"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultWelcomeTimeout = 4 * time.Second

var ErrFetchInProgress = autherrors.ErrFetchInProgress

// AuthSession owns the OAuth state: discovery, authorization requests,
// token refresh and teardown.
type AuthSession interface {
	LoggedIn() bool
	FetchServiceConfiguration(ctx context.Context) error
	MakeAuthorizationRequest(ctx context.Context, username string) error
	PerformWithFreshTokens(ctx context.Context) (*authflow.TenantInfo, error)
	SignOut(ctx context.Context) error
	OnTokenResponse(fn func())
	OnAuthorizationFailure(fn func(error))
}

// ProfileFetcher reads the signed-in user from the tenant web API.
type ProfileFetcher interface {
	FetchPrincipal(ctx context.Context, baseURL, accessToken string) (*profile.UserProfile, error)
	FetchImage(ctx context.Context, baseURL, accessToken string, personID int) (string, error)
}

// Controller mediates between authentication events, web API fetches and the view.
type Controller struct {
	auth      AuthSession
	profiles  ProfileFetcher
	view      *view.Binder
	host      hostbridge.Messenger
	logger    zerolog.Logger
	claimKey  string
	welcomeTO time.Duration

	mu      sync.Mutex
	state   State
	profile *profile.UserProfile
	// epoch changes on every sign-out so fetches started before it can be
	// told apart from the current session.
	epoch    uint64
	fetching atomic.Bool
}

type ControllerOption func(*Controller)

func WithLogger(logger zerolog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithWebAPIClaim sets the claim holding the tenant web API base URL.
func WithWebAPIClaim(claim string) ControllerOption {
	return func(c *Controller) {
		c.claimKey = claim
	}
}

func WithWelcomeTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.welcomeTO = timeout
	}
}

// NewController renders the pre-login view and subscribes to token responses.
func NewController(auth AuthSession, profiles ProfileFetcher, binder *view.Binder, host hostbridge.Messenger, options ...ControllerOption) *Controller {
	c := &Controller{
		auth:      auth,
		profiles:  profiles,
		view:      binder,
		host:      host,
		logger:    log.Logger,
		claimKey:  config.DefaultWebAPIClaim,
		welcomeTO: defaultWelcomeTimeout,
	}

	for _, opt := range options {
		opt(c)
	}

	c.view.Initialize()
	c.auth.OnTokenResponse(c.handleTokenResponse)
	c.auth.OnAuthorizationFailure(c.handleAuthorizationFailure)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Profile returns a copy of the fetched profile, nil before a fetch or after sign-out.
func (c *Controller) Profile() *profile.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

// SignIn starts the authorization flow unless a session already exists.
func (c *Controller) SignIn(ctx context.Context, username string) error {
	if c.auth.LoggedIn() {
		return nil
	}

	c.logger.Info().Msg("Signing in...")
	c.setState(Authenticating)

	if err := c.auth.FetchServiceConfiguration(ctx); err != nil {
		c.logger.Err(err).Msg("Fetching service configuration failed")
		c.setState(SignedOut)
		return autherrors.Wrapf(err, "Controller.SignIn FetchServiceConfiguration")
	}
	if err := c.auth.MakeAuthorizationRequest(ctx, username); err != nil {
		c.logger.Err(err).Msg("Authorization request failed")
		c.setState(SignedOut)
		return autherrors.Wrapf(err, "Controller.SignIn MakeAuthorizationRequest")
	}
	return nil
}

// SignOut tears the session down. Local state is always reset; a failure in
// the auth session teardown is only logged.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.auth.SignOut(ctx); err != nil {
		c.logger.Err(err).Msg("Auth session sign-out failed")
	}

	c.mu.Lock()
	c.profile = nil
	c.state = SignedOut
	c.epoch++
	c.mu.Unlock()

	c.view.Initialize()
}

// HandleSignInClick toggles between signing in and signing out based on the
// label currently shown on the sign-in control.
func (c *Controller) HandleSignInClick(ctx context.Context) {
	switch c.view.SignInText() {
	case view.SignInLabel:
		if err := c.SignIn(ctx, ""); err != nil {
			c.logger.Err(err).Msg("Sign-in failed")
		}
	case view.SignOutLabel:
		c.SignOut(ctx)
	}
}

func (c *Controller) HandleFetchProfileClick(ctx context.Context) {
	if err := c.FetchProfile(ctx); err != nil {
		c.logger.Err(err).Msg("Something bad happened")
	}
}

func (c *Controller) handleTokenResponse() {
	c.mu.Lock()
	c.state = SignedIn
	c.mu.Unlock()

	c.render()

	if err := c.host.Send(hostbridge.ChannelAppFocus); err != nil {
		c.logger.Err(err).Msg("Requesting app focus failed")
	}
}

// handleAuthorizationFailure returns a pending sign-in to SignedOut. Failures
// reported outside of a sign-in attempt are only logged.
func (c *Controller) handleAuthorizationFailure(err error) {
	c.logger.Err(err).Msg("Sign-in did not complete")

	c.mu.Lock()
	if c.state != Authenticating {
		c.mu.Unlock()
		return
	}
	c.state = SignedOut
	c.mu.Unlock()

	c.render()
}

// GetWebAPIURL returns the tenant web API base URL carried in the claims, or
// an empty string when the claims do not carry one.
func (c *Controller) GetWebAPIURL(info *authflow.TenantInfo) string {
	if info == nil || info.Claims == nil {
		c.logger.Warn().Msg("Claims are empty!")
		return ""
	}

	url, ok := info.Claims[c.claimKey]
	if !ok || url == "" {
		c.logger.Warn().Str("claim", c.claimKey).Msg("Claims carry no web API url")
		return ""
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Controller) render() {
	c.mu.Lock()
	s := view.State{SignedIn: c.state == SignedIn}
	if c.profile != nil {
		p := *c.profile
		s.Profile = &p
	}
	c.mu.Unlock()
	c.view.Render(s)
}
