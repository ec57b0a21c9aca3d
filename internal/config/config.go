package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
	ProfileConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

type ProfileConfig interface {
	GetWebAPIClaim() string
	GetWelcomeTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	OAuth
	Profile
}

func New() Config {
	return mainConfig{}
}
