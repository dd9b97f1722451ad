package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	BackendAddress string        `env:"BACKEND_ADDRESS" env-default:"http://localhost:8080/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	PrivateKey     string        `env:"PRIVATE_KEY" env-default:"privatekey"`
	DemoMode       bool          `env:"DEMO_MODE" env-default:"false"`
	DefaultCard    string        `env:"DEFAULT_CARD" env-default:"4000123456789012"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.BackendAddress, "b", "http://localhost:8080/api", "base URL of the transaction backend")
	flag.DurationVar(&cfg.RequestTimeout, "t", 10*time.Second, "per-request timeout")
	flag.BoolVar(&cfg.DemoMode, "demo", false, "run against an in-process demo backend")
	flag.StringVar(&cfg.DefaultCard, "card", "4000123456789012", "card selected at startup")

	flag.Parse()

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
