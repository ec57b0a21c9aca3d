package main

import (
	"github.com/jrsteele09/go-auth-desktop/internal/config"
	"github.com/spf13/cobra"
)

// flagConfig lets command line flags win over the environment.
type flagConfig struct {
	config.Config

	issuer       string
	clientID     string
	redirectAddr string
	scopes       []string
	webAPIClaim  string
}

func (c *flagConfig) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.issuer, "issuer", "", "OpenID provider issuer URL (env OIDC_ISSUER)")
	cmd.Flags().StringVar(&c.clientID, "client-id", "", "OAuth client ID (env OIDC_CLIENT_ID)")
	cmd.Flags().StringVar(&c.redirectAddr, "redirect-addr", "", "loopback address for the redirect listener (env OIDC_REDIRECT_ADDR)")
	cmd.Flags().StringSliceVar(&c.scopes, "scopes", nil, "requested scopes (env OIDC_SCOPES)")
	cmd.Flags().StringVar(&c.webAPIClaim, "webapi-claim", "", "claim carrying the web API base URL (env WEBAPI_CLAIM)")
}

func (c *flagConfig) GetIssuerURL() string {
	return firstNonEmpty(c.issuer, c.Config.GetIssuerURL())
}

func (c *flagConfig) GetClientID() string {
	return firstNonEmpty(c.clientID, c.Config.GetClientID())
}

func (c *flagConfig) GetRedirectAddr() string {
	return firstNonEmpty(c.redirectAddr, c.Config.GetRedirectAddr())
}

func (c *flagConfig) GetScopes() []string {
	if len(c.scopes) > 0 {
		return c.scopes
	}
	return c.Config.GetScopes()
}

func (c *flagConfig) GetWebAPIClaim() string {
	return firstNonEmpty(c.webAPIClaim, c.Config.GetWebAPIClaim())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
