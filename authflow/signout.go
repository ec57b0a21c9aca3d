package authflow

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// SignOut forgets the held tokens and revokes them at the provider when it
// advertises a revocation endpoint. Local state is cleared even when
// revocation fails, and token exchanges or refreshes still in flight are
// discarded when they complete.
func (f *Flow) SignOut(ctx context.Context) error {
	f.stopCallbackServer()

	f.mu.Lock()
	token, oauthConfig, d := f.token, f.oauthConfig, f.discovery
	f.token = nil
	f.claims = nil
	f.epoch++
	f.mu.Unlock()

	if token == nil || oauthConfig == nil {
		return nil
	}
	return f.revokeAll(ctx, d, oauthConfig.ClientID, token)
}

// revokeAll revokes the refresh and access tokens. It is a no-op when the
// provider has no revocation endpoint.
func (f *Flow) revokeAll(ctx context.Context, d *discovery, clientID string, token *oauth2.Token) error {
	if d == nil || d.revocationEndpoint == "" {
		return nil
	}

	var errs []error
	if token.RefreshToken != "" {
		errs = append(errs, f.revoke(ctx, d.revocationEndpoint, clientID, token.RefreshToken, "refresh_token"))
	}
	if token.AccessToken != "" {
		errs = append(errs, f.revoke(ctx, d.revocationEndpoint, clientID, token.AccessToken, "access_token"))
	}
	return autherrors.Join(errs...)
}

func (f *Flow) revoke(ctx context.Context, endpoint, clientID, token, tokenTypeHint string) error {
	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", tokenTypeHint)
	form.Set("client_id", clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "Flow.revoke NewRequest")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Err(err).Str("token_type", tokenTypeHint).Msg("Failed to revoke token")
		return errors.Wrap(err, "Flow.revoke Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.Wrapf(autherrors.ErrUnexpectedStatus, "revoke %s: %d", tokenTypeHint, resp.StatusCode)
		f.logger.Err(err).Str("token_type", tokenTypeHint).Msg("Failed to revoke token")
		return err
	}
	return nil
}
