package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load populates a configuration struct from the environment. A .env
// file in the working directory is loaded once per process before the
// first parse; a missing file is not an error. Parsing honors the
// struct's env tags, including required markers and envDefault values.
func Load[T any]() (T, error) {
	var cfg T

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load for configuration the process cannot start without.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
