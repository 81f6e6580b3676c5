package config

import "errors"

var (
	// ErrNotFound is returned when neither the base nor the environment file exists.
	ErrNotFound = errors.New("config: configuration not found")

	// ErrInvalidFile is returned for YAML files that do not decode into a mapping.
	ErrInvalidFile = errors.New("config: invalid configuration file")

	// ErrInvalidName is returned for names that escape the config directory.
	ErrInvalidName = errors.New("config: invalid configuration name")

	// ErrParsingEnv is returned when environment variables cannot be parsed into a struct.
	ErrParsingEnv = errors.New("config: failed to parse environment variables")

	ErrDecode = errors.New("config: failed to decode configuration")
)
