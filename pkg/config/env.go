package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadEnv loads KEY=VALUE files into the process environment. With no
// arguments it loads ".env". Later files override earlier ones; variables
// already set in the environment are kept.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		return godotenv.Load()
	}
	// godotenv.Load never overrides, so load in reverse to let later files win.
	for i := len(files) - 1; i >= 0; i-- {
		if err := godotenv.Load(files[i]); err != nil {
			return err
		}
	}
	return nil
}

// MustLoadEnv is LoadEnv that panics on error.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(fmt.Sprintf("config: failed to load env files: %v", err))
	}
}

// Parse reads environment variables into a new T using `env` struct tags.
//
//	type Settings struct {
//		Addr string `env:"PLAIN_ADDR" envDefault:":8080"`
//	}
//	s, err := config.Parse[Settings]()
func Parse[T any]() (T, error) {
	var v T
	if err := env.Parse(&v); err != nil {
		return v, errors.Join(ErrParsingEnv, err)
	}
	return v, nil
}
