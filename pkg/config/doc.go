// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each component declares its own config struct with env tags and
// loads it independently, so a binary only pays for the configuration
// it actually uses.
//
// # Usage
//
//	type PostgresConfig struct {
//		ConnString string `env:"DATABASE_URL,required"`
//	}
//
//	cfg, err := config.Load[PostgresConfig]()
//	if err != nil {
//		return err
//	}
package config
