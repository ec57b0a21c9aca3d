package authflow

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

// FetchServiceConfiguration discovers the provider endpoints for the
// configured issuer. Discovered providers are reused for an hour.
func (f *Flow) FetchServiceConfiguration(ctx context.Context) error {
	issuer := f.cfg.GetIssuerURL()

	if cached, ok := f.providers.Get(issuer); ok {
		f.setDiscovery(cached.(*discovery))
		return nil
	}

	provider, err := oidc.NewProvider(f.clientContext(ctx), issuer)
	if err != nil {
		return errors.Wrap(err, "Flow.FetchServiceConfiguration NewProvider")
	}

	var extra struct {
		RevocationEndpoint string `json:"revocation_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		f.logger.Warn().Err(err).Str("issuer", issuer).Msg("Could not read extra discovery claims")
	}

	d := &discovery{
		provider:           provider,
		revocationEndpoint: extra.RevocationEndpoint,
	}
	f.providers.Set(issuer, d, cache.DefaultExpiration)
	f.setDiscovery(d)

	f.logger.Debug().Str("issuer", issuer).Msg("Fetched service configuration")
	return nil
}

func (f *Flow) setDiscovery(d *discovery) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discovery = d
}

func (f *Flow) currentDiscovery() (*discovery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.discovery == nil {
		return nil, ErrNoServiceConfiguration
	}
	return f.discovery, nil
}
