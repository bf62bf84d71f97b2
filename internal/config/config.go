// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `json:"log_level"`

	// SessionTTL bounds how long a login session stays valid.
	SessionTTL time.Duration `json:"-"`

	// SessionTTLRaw is the parseable form of SessionTTL, e.g. "168h".
	SessionTTLRaw string `json:"session_ttl"`

	// AdminUsername and AdminPassword seed the admin account at startup.
	// Both empty disables seeding. Environment-only, never from file.
	AdminUsername string `json:"-"`
	AdminPassword string `json:"-"`

	// Config is the path to the config file.
	Config string `json:"-"`
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Address, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.SessionTTLRaw, "session-ttl", "168h", "session lifetime")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct
// containing the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// A .env file, when present, supplies environment variables.
	_ = godotenv.Load()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Address = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		options.SessionTTLRaw = ttl
	}
	options.AdminUsername = os.Getenv("ADMIN_USERNAME")
	options.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	ttl, err := time.ParseDuration(options.SessionTTLRaw)
	if err != nil {
		log.Fatalf("invalid session ttl %q: %v", options.SessionTTLRaw, err)
	}
	options.SessionTTL = ttl

	return options
}
