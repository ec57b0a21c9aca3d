package config

import "time"

const (
	issuerVar          = "OIDC_ISSUER"
	clientIDVar        = "OIDC_CLIENT_ID"
	redirectAddrVar    = "OIDC_REDIRECT_ADDR"
	redirectPathVar    = "OIDC_REDIRECT_PATH"
	scopesVar          = "OIDC_SCOPES"
	refreshSkewVar     = "OIDC_REFRESH_SKEW"
	callbackTimeoutVar = "OIDC_CALLBACK_TIMEOUT"
)

type OAuthConfig interface {
	GetIssuerURL() string
	GetClientID() string
	GetRedirectAddr() string
	GetRedirectPath() string
	GetScopes() []string
	GetRefreshSkew() time.Duration
	GetCallbackTimeout() time.Duration
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetIssuerURL() string {
	return GetEnv(issuerVar, "https://sod.superoffice.com/login")
}

func (OAuth) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

// GetRedirectAddr is the loopback address the callback listener binds to.
// Port 0 picks a free port and the redirect URI follows it.
func (OAuth) GetRedirectAddr() string {
	return GetEnv(redirectAddrVar, "127.0.0.1:8000")
}

func (OAuth) GetRedirectPath() string {
	return GetEnv(redirectPathVar, "/callback")
}

func (OAuth) GetScopes() []string {
	return GetEnvList(scopesVar, []string{"openid", "offline_access"})
}

func (OAuth) GetRefreshSkew() time.Duration {
	return GetEnvDuration(refreshSkewVar, time.Minute)
}

func (OAuth) GetCallbackTimeout() time.Duration {
	return GetEnvDuration(callbackTimeoutVar, 5*time.Minute)
}
