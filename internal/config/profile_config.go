package config

import "time"

const (
	webAPIClaimVar    = "WEBAPI_CLAIM"
	welcomeTimeoutVar = "WELCOME_TIMEOUT"

	DefaultWebAPIClaim = "http://schemes.superoffice.net/identity/webapi_url"
)

type Profile struct{}

var _ ProfileConfig = Profile{}

func (Profile) GetWebAPIClaim() string {
	return GetEnv(webAPIClaimVar, DefaultWebAPIClaim)
}

func (Profile) GetWelcomeTimeout() time.Duration {
	return GetEnvDuration(welcomeTimeoutVar, 4*time.Second)
}
