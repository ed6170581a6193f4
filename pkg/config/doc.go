// Package config loads environment-driven configuration structs.
//
// Structs describe their variables with caarlos0/env tags:
//
//	type Config struct {
//	    CookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"auth_token"`
//	    TTL        time.Duration `env:"SESSION_TTL" envDefault:"168h"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil { ... }
//
// The first call to Load reads a .env file from the working directory when
// one exists (joho/godotenv; variables already set in the process win). Each
// struct type is parsed once and cached for the life of the process; call
// ResetCache in tests that need to re-read the environment.
package config
