package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort   string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	FrontendURL  string        `yaml:"frontend-url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	JWTSecretKey string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token-ttl" env:"TOKEN_TTL" env-default:"3h"`
	ClaimTTL     time.Duration `yaml:"claim-ttl" env:"CLAIM_TTL" env-default:"15s"`
	Lifecycle    Lifecycle     `yaml:"lifecycle"`
}

// Lifecycle tunes the janitor that evicts abandoned and finished matches.
type Lifecycle struct {
	SweepInterval  time.Duration `yaml:"sweep-interval" env:"SWEEP_INTERVAL" env-default:"1m"`
	MatchIdleTTL   time.Duration `yaml:"match-idle-ttl" env:"MATCH_IDLE_TTL" env-default:"30m"`
	FinishedLinger time.Duration `yaml:"finished-linger" env:"FINISHED_LINGER" env-default:"2m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
