package authflow

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-auth-desktop/authflow/pendingrepo"
	"github.com/jrsteele09/go-auth-desktop/internal/config"
	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	discoveryTTL     = time.Hour
	discoveryCleanup = 10 * time.Minute
)

var (
	ErrNotSignedIn            = autherrors.ErrNotSignedIn
	ErrNoServiceConfiguration = autherrors.ErrNoServiceConfiguration
	ErrInvalidState           = autherrors.ErrInvalidState
	ErrNonceMismatch          = autherrors.ErrNonceMismatch
	ErrMissingIDToken         = autherrors.ErrMissingIDToken
	ErrAuthorizationDenied    = autherrors.ErrAuthorizationDenied
	ErrAuthorizationTimeout   = autherrors.ErrAuthorizationTimeout
	ErrSignedOut              = autherrors.ErrSignedOut
)

// TenantInfo is what a caller needs to talk to the tenant web API.
type TenantInfo struct {
	AccessToken string
	Claims      map[string]string
}

// BrowserOpener shows the authorization URL to the user.
type BrowserOpener func(ctx context.Context, url string) error

type discovery struct {
	provider           *oidc.Provider
	revocationEndpoint string
}

// Flow runs the authorization code flow with PKCE for a public desktop client
// and keeps the resulting tokens in memory.
type Flow struct {
	cfg        config.OAuthConfig
	httpClient *http.Client
	pending    pendingrepo.Repo
	providers  *cache.Cache
	openURL    BrowserOpener
	verifierFn func(*oidc.Config)
	logger     zerolog.Logger
	nowFunc    func() time.Time

	mu          sync.Mutex
	discovery   *discovery
	oauthConfig *oauth2.Config
	token       *oauth2.Token
	claims      map[string]string
	callback    *callbackServer
	// epoch changes on every sign-out; work started under an older epoch
	// must not store tokens.
	epoch uint64

	refreshMu sync.Mutex

	listenersMu      sync.RWMutex
	listeners        []func()
	failureListeners []func(error)
}

type FlowOption func(*Flow)

func WithHTTPClient(httpClient *http.Client) FlowOption {
	return func(f *Flow) {
		f.httpClient = httpClient
	}
}

func WithBrowserOpener(opener BrowserOpener) FlowOption {
	return func(f *Flow) {
		f.openURL = opener
	}
}

func WithPendingRepo(repo pendingrepo.Repo) FlowOption {
	return func(f *Flow) {
		f.pending = repo
	}
}

func WithLogger(logger zerolog.Logger) FlowOption {
	return func(f *Flow) {
		f.logger = logger
	}
}

func WithNowFunc(now func() time.Time) FlowOption {
	return func(f *Flow) {
		f.nowFunc = now
	}
}

// WithVerifierConfig adjusts the ID token verifier configuration after the
// client ID and clock have been filled in.
func WithVerifierConfig(fn func(*oidc.Config)) FlowOption {
	return func(f *Flow) {
		f.verifierFn = fn
	}
}

func New(cfg config.OAuthConfig, options ...FlowOption) *Flow {
	f := &Flow{
		cfg:       cfg,
		providers: cache.New(discoveryTTL, discoveryCleanup),
		logger:    log.Logger,
	}

	for _, opt := range options {
		opt(f)
	}

	if f.httpClient == nil {
		f.httpClient = http.DefaultClient
	}
	if f.pending == nil {
		f.pending = pendingrepo.NewInMemoryRepo()
	}
	if f.openURL == nil {
		f.openURL = OpenSystemBrowser
	}
	if f.nowFunc == nil {
		f.nowFunc = time.Now
	}
	return f
}

// LoggedIn reports whether a token is held.
func (f *Flow) LoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != nil
}

// OnTokenResponse registers fn to run after every successful token exchange or refresh.
func (f *Flow) OnTokenResponse(fn func()) {
	f.listenersMu.Lock()
	defer f.listenersMu.Unlock()
	f.listeners = append(f.listeners, fn)
}

// OnAuthorizationFailure registers fn to run when an authorization request
// ends without a token: denied, failed exchange or verification, or timeout.
func (f *Flow) OnAuthorizationFailure(fn func(error)) {
	f.listenersMu.Lock()
	defer f.listenersMu.Unlock()
	f.failureListeners = append(f.failureListeners, fn)
}

func (f *Flow) emitAuthorizationFailure(err error) {
	f.listenersMu.RLock()
	listeners := append([]func(error){}, f.failureListeners...)
	f.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(err)
	}
}

func (f *Flow) currentEpoch() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch
}

func (f *Flow) emitTokenResponse() {
	f.listenersMu.RLock()
	listeners := append([]func(){}, f.listeners...)
	f.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}

// clientContext makes the oauth2 and oidc packages use the flow's HTTP client.
func (f *Flow) clientContext(ctx context.Context) context.Context {
	return oidc.ClientContext(context.WithValue(ctx, oauth2.HTTPClient, f.httpClient), f.httpClient)
}

func (f *Flow) verifierConfig() *oidc.Config {
	c := &oidc.Config{
		ClientID: f.cfg.GetClientID(),
		Now:      f.nowFunc,
	}
	if f.verifierFn != nil {
		f.verifierFn(c)
	}
	return c
}
