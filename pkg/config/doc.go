// Package config loads typed configuration from environment variables.
//
// Structs are described with caarlos0/env tags. Nested structs are parsed
// recursively, so each package can own its slice of configuration:
//
//	type Config struct {
//		Addr   string        `env:"APP_ADDR" envDefault:":8080"`
//		Logger logger.Config
//		Resend resend.Config
//	}
//
//	cfg, err := config.Load[Config]()
//
// [Load] first reads .env files with godotenv, skipping files that do not
// exist. [Parse] reads from an explicit map and is meant for tests.
package config
