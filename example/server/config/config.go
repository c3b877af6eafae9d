// Package config loads the example server configuration from
// environment variables.
package config

import (
	"os"
)

const (
	// default port for the http server to run
	DefaultPort = "9999"
)

type Config struct {
	Port           string
	Route          string
	RegistrationID string
	ClientID       string
	Issuer         string
	JWKSURL        string
}

// FromEnvVars loads configuration parameters from environment variables.
// If there is no such variable defined, then use default values.
func FromEnvVars(defaults *Config) *Config {
	if defaults == nil {
		defaults = &Config{}
	}
	cfg := &Config{
		Port:           defaults.Port,
		Route:          defaults.Route,
		RegistrationID: defaults.RegistrationID,
		ClientID:       defaults.ClientID,
		Issuer:         defaults.Issuer,
		JWKSURL:        defaults.JWKSURL,
	}
	if value, ok := os.LookupEnv("PORT"); ok {
		cfg.Port = value
	}
	if value, ok := os.LookupEnv("LOGOUT_ROUTE"); ok {
		cfg.Route = value
	}
	if value, ok := os.LookupEnv("REGISTRATION_ID"); ok {
		cfg.RegistrationID = value
	}
	if value, ok := os.LookupEnv("CLIENT_ID"); ok {
		cfg.ClientID = value
	}
	if value, ok := os.LookupEnv("ISSUER"); ok {
		cfg.Issuer = value
	}
	if value, ok := os.LookupEnv("JWKS_URL"); ok {
		cfg.JWKSURL = value
	}
	return cfg
}
