package authflow

import (
	"context"
	"net"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-desktop/authflow/pendingrepo"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const stateLength = 32

// MakeAuthorizationRequest starts the loopback callback listener and sends the
// user to the provider's authorization endpoint. It returns once the browser
// has been asked to open; the token response arrives later through the
// OnTokenResponse listeners.
func (f *Flow) MakeAuthorizationRequest(ctx context.Context, username string) error {
	d, err := f.currentDiscovery()
	if err != nil {
		return err
	}

	f.stopCallbackServer()
	f.pending.DeleteBefore(f.nowFunc().Add(-f.cfg.GetCallbackTimeout()))

	ln, err := net.Listen("tcp", f.cfg.GetRedirectAddr())
	if err != nil {
		return errors.Wrap(err, "Flow.MakeAuthorizationRequest Listen")
	}
	redirectURL := "http://" + ln.Addr().String() + f.cfg.GetRedirectPath()

	oauthConfig := &oauth2.Config{
		ClientID:    f.cfg.GetClientID(),
		Endpoint:    d.provider.Endpoint(),
		RedirectURL: redirectURL,
		Scopes:      f.cfg.GetScopes(),
	}

	state := generateRandomString(stateLength)
	nonce := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	if err := f.pending.Upsert(state, &pendingrepo.AuthRequest{
		CodeVerifier: verifier,
		Nonce:        nonce,
		RedirectURL:  redirectURL,
		Username:     username,
		CreatedAt:    f.nowFunc(),
	}); err != nil {
		_ = ln.Close()
		return errors.Wrap(err, "Flow.MakeAuthorizationRequest Upsert")
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.S256ChallengeOption(verifier),
		oidc.Nonce(nonce),
	}
	if strings.TrimSpace(username) != "" {
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", username))
	}
	authURL := oauthConfig.AuthCodeURL(state, opts...)

	f.startCallbackServer(ln, d, oauthConfig)

	f.logger.Info().Str("redirect_uri", redirectURL).Msg("Opening authorization request")
	if err := f.openURL(ctx, authURL); err != nil {
		f.stopCallbackServer()
		_ = f.pending.Delete(state)
		return errors.Wrap(err, "Flow.MakeAuthorizationRequest open browser")
	}
	return nil
}
