// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

const minSecretLength = 32

// Server holds everything the serve command needs.
type Server struct {
	Addr           string
	DBPath         string
	JWTSecret      string
	AllowedOrigins []string
}

// DefaultServer returns a Server config with development defaults.
// The JWT secret has no default and must come from the environment.
func DefaultServer() Server {
	return Server{
		Addr:   "127.0.0.1:8000",
		DBPath: "inkwell.db",
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:4173",
		},
	}
}

// LoadServer reads server configuration from environment variables,
// falling back to defaults for any unset values.
func LoadServer() (Server, error) {
	cfg := DefaultServer()

	if v := os.Getenv("INKWELL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("INKWELL_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("INKWELL_ALLOWED_ORIGINS"); v != "" {
		origins := make([]string, 0, 2)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}

	cfg.JWTSecret = os.Getenv("INKWELL_JWT_SECRET")
	if len(cfg.JWTSecret) < minSecretLength {
		return cfg, fmt.Errorf("INKWELL_JWT_SECRET must be at least %d characters", minSecretLength)
	}
	return cfg, nil
}

// OriginAllowed reports whether the given origin may connect.
func (s Server) OriginAllowed(origin string) bool {
	for _, o := range s.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}
