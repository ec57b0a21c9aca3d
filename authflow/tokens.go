package authflow

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	autherrors "github.com/jrsteele09/go-auth-desktop/internal/errors"
	"github.com/jrsteele09/go-auth-desktop/internal/utils"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// PerformWithFreshTokens returns the current access token and claims,
// refreshing first when the token expires within the configured skew.
func (f *Flow) PerformWithFreshTokens(ctx context.Context) (*TenantInfo, error) {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	f.mu.Lock()
	token, oauthConfig, d, epoch := f.token, f.oauthConfig, f.discovery, f.epoch
	f.mu.Unlock()

	if token == nil {
		return nil, ErrNotSignedIn
	}

	if f.needsRefresh(token) {
		if err := f.refresh(ctx, epoch, d, oauthConfig, token); err != nil {
			return nil, err
		}
		f.emitTokenResponse()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == nil || f.epoch != epoch {
		return nil, ErrNotSignedIn
	}
	claims := make(map[string]string, len(f.claims))
	for k, v := range f.claims {
		claims[k] = v
	}
	return &TenantInfo{AccessToken: f.token.AccessToken, Claims: claims}, nil
}

func (f *Flow) needsRefresh(token *oauth2.Token) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return !f.nowFunc().Add(f.cfg.GetRefreshSkew()).Before(token.Expiry)
}

func (f *Flow) refresh(ctx context.Context, epoch uint64, d *discovery, oauthConfig *oauth2.Config, token *oauth2.Token) error {
	if token.RefreshToken == "" {
		return autherrors.Wrapf(ErrNotSignedIn, "access token expiring and no refresh token held")
	}

	// Backdate the copy so the oauth2 token source refreshes instead of
	// handing the cached token back.
	stale := *token
	stale.Expiry = time.Unix(1, 0)

	ctx = f.clientContext(ctx)
	refreshed, err := oauthConfig.TokenSource(ctx, &stale).Token()
	if err != nil {
		return errors.Wrap(err, "Flow.refresh Token")
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	f.mu.Lock()
	claims := f.claims
	f.mu.Unlock()

	if rawIDToken, ok := refreshed.Extra("id_token").(string); ok && rawIDToken != "" && d != nil {
		claims, err = f.verifyIDToken(ctx, d, rawIDToken, "")
		if err != nil {
			return errors.Wrap(err, "Flow.refresh verifyIDToken")
		}
	}

	if !f.storeToken(epoch, oauthConfig, refreshed, claims) {
		// The session was signed out while the refresh was in flight.
		if err := f.revokeAll(ctx, d, oauthConfig.ClientID, refreshed); err != nil {
			f.logger.Err(err).Msg("Revoking tokens refreshed after sign-out")
		}
		return errors.Wrap(ErrNotSignedIn, "Flow.refresh signed out during refresh")
	}
	f.logger.Debug().Time("expiry", refreshed.Expiry).Msg("Refreshed access token")
	return nil
}

// verifyIDToken checks the ID token and returns its claims. An empty nonce
// skips the nonce check, which refresh responses are not bound by.
func (f *Flow) verifyIDToken(ctx context.Context, d *discovery, rawIDToken, nonce string) (map[string]string, error) {
	idToken, err := d.provider.Verifier(f.verifierConfig()).Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, ErrNonceMismatch
	}

	var raw map[string]any
	if err := idToken.Claims(&raw); err != nil {
		return nil, errors.Wrap(err, "Flow.verifyIDToken Claims")
	}
	return utils.ToStringMap(raw), nil
}

// storeToken keeps token as the session unless a sign-out happened since
// epoch was read. It reports whether the token was stored.
func (f *Flow) storeToken(epoch uint64, oauthConfig *oauth2.Config, token *oauth2.Token, claims map[string]string) bool {
	if token.Expiry.IsZero() {
		if exp, ok := accessTokenExpiry(token.AccessToken); ok {
			token.Expiry = exp
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.epoch != epoch {
		return false
	}
	f.oauthConfig = oauthConfig
	f.token = token
	f.claims = claims
	return true
}

// accessTokenExpiry reads exp from a JWT access token when the token response
// carried no expires_in. The signature is not checked; the value is only used
// to schedule a refresh.
func accessTokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
