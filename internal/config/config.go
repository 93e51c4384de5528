package config

type Config interface {
	EnvConfig
	SecurityConfig
	StorageConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	Security
	Storage
}

func New() Config {
	return mainConfig{}
}
