package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when no files are given.
const DefaultEnvFile = ".env"

// Load reads the given .env files into the process environment and parses T
// from it using `env` and `envDefault` struct tags. Files that do not exist
// are skipped; variables already set in the environment win.
//
//	type Config struct {
//		Addr string `env:"APP_ADDR" envDefault:":8080"`
//		Mail resend.Config
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any](files ...string) (T, error) {
	var zero T
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, name := range files {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return zero, fmt.Errorf("%w: %s: %w", ErrLoadingEnvFile, name, err)
		}
	}
	return parse[T](env.Options{})
}

// Parse fills T from the given variables only, ignoring the process environment.
func Parse[T any](environ map[string]string) (T, error) {
	return parse[T](env.Options{Environment: environ})
}

// MustLoad is like Load but panics on error.
func MustLoad[T any](files ...string) T {
	cfg, err := Load[T](files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func parse[T any](opts env.Options) (T, error) {
	var cfg T
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		var zero T
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}
