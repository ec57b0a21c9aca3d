package authflow

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	shutdownTimeout = 5 * time.Second

	closeWindowPage = `<!DOCTYPE html><html><head><title>Signed in</title></head>` +
		`<body><p>Sign-in complete. You can close this window and return to the application.</p></body></html>`
)

// callbackServer receives exactly one redirect from the provider.
type callbackServer struct {
	srv   *http.Server
	timer *time.Timer
	once  sync.Once
}

func (c *callbackServer) shutdown(logger zerolog.Logger) {
	c.once.Do(func() {
		if c.timer != nil {
			c.timer.Stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := c.srv.Shutdown(ctx); err != nil {
			logger.Err(err).Msg("Callback listener shutdown")
		}
	})
}

func (f *Flow) startCallbackServer(ln net.Listener, d *discovery, oauthConfig *oauth2.Config) {
	epoch := f.currentEpoch()
	cs := &callbackServer{}

	mux := http.NewServeMux()
	mux.HandleFunc(f.cfg.GetRedirectPath(), f.callbackHandler(epoch, d, oauthConfig, func() {
		f.detachCallback(cs)
		go cs.shutdown(f.logger)
	}))
	cs.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	cs.timer = time.AfterFunc(f.cfg.GetCallbackTimeout(), func() {
		if !f.detachCallback(cs) {
			return
		}
		f.logger.Warn().Msg("Timed out waiting for the authorization callback")
		cs.shutdown(f.logger)
		f.emitAuthorizationFailure(ErrAuthorizationTimeout)
	})

	f.mu.Lock()
	f.callback = cs
	f.mu.Unlock()

	go func() {
		if err := cs.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			f.logger.Err(err).Msg("Callback listener stopped")
		}
	}()
}

// detachCallback forgets cs if it is still the active listener and reports
// whether it was.
func (f *Flow) detachCallback(cs *callbackServer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.callback != cs {
		return false
	}
	f.callback = nil
	return true
}

func (f *Flow) stopCallbackServer() {
	f.mu.Lock()
	cs := f.callback
	f.callback = nil
	f.mu.Unlock()
	if cs != nil {
		cs.shutdown(f.logger)
	}
}

func (f *Flow) callbackHandler(epoch uint64, d *discovery, oauthConfig *oauth2.Config, done func()) http.HandlerFunc {
	fail := func(err error) {
		done()
		f.emitAuthorizationFailure(err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			f.logger.Error().Err(ErrAuthorizationDenied).Str("error", errorParam).Str("error_description", errorDesc).Msg("Authorization failed")
			_ = f.pending.Delete(state)
			http.Error(w, fmt.Sprintf("Authorization failed: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
			fail(errors.Wrapf(ErrAuthorizationDenied, "%s: %s", errorParam, errorDesc))
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		req, err := f.pending.Get(state)
		if err != nil {
			f.logger.Err(err).Msg("Callback with unknown state")
			http.Error(w, ErrInvalidState.Error(), http.StatusBadRequest)
			return
		}
		_ = f.pending.Delete(state)

		ctx := f.clientContext(r.Context())
		token, err := oauthConfig.Exchange(ctx, code, oauth2.VerifierOption(req.CodeVerifier))
		if err != nil {
			f.logger.Err(err).Msg("Token exchange failed")
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			fail(errors.Wrap(err, "Flow.callbackHandler Exchange"))
			return
		}

		rawIDToken, ok := token.Extra("id_token").(string)
		if !ok || rawIDToken == "" {
			f.logger.Err(ErrMissingIDToken).Msg("Token exchange returned no ID token")
			http.Error(w, ErrMissingIDToken.Error(), http.StatusBadGateway)
			fail(ErrMissingIDToken)
			return
		}

		claims, err := f.verifyIDToken(ctx, d, rawIDToken, req.Nonce)
		if err != nil {
			f.logger.Err(err).Msg("ID token verification failed")
			http.Error(w, "ID token verification failed", http.StatusUnauthorized)
			fail(err)
			return
		}

		if !f.storeToken(epoch, oauthConfig, token, claims) {
			f.logger.Warn().Msg("Signed out before the authorization callback completed")
			http.Error(w, ErrSignedOut.Error(), http.StatusConflict)
			if err := f.revokeAll(ctx, d, oauthConfig.ClientID, token); err != nil {
				f.logger.Err(err).Msg("Revoking tokens issued after sign-out")
			}
			fail(ErrSignedOut)
			return
		}
		f.logger.Info().Str("sub", claims["sub"]).Msg("Signed in")
		f.emitTokenResponse()

		w.Header().Set("Content-Type", contentTypeHTML)
		_, _ = w.Write([]byte(closeWindowPage))
		done()
	}
}
