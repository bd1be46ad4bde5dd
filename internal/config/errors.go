package config

import "errors"

// ConfigOutOfRange and UnsupportedOption are both fatal pre-flight
// failures, reported as a single-line message by the caller.
var (
	ErrUnsupportedOption = errors.New("unsupported config option")
	ErrConfigOutOfRange  = errors.New("config value out of range")
)
