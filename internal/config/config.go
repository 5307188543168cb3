// Package config contains the configuration for the kelpd script-hosting
// server, along with TOML-file loading support.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DBType is the type of a Database connection.
type DBType string

func (dbt DBType) String() string {
	return string(dbt)
}

const (
	DatabaseNone     DBType = "none"
	DatabaseSQLite   DBType = "sqlite"
	DatabaseInMemory DBType = "inmem"
)

const (
	MaxSecretSize = 64
	MinSecretSize = 32
)

// ParseDBType parses a string found in a connection string into a DBType.
func ParseDBType(s string) (DBType, error) {
	sLower := strings.ToLower(s)

	switch sLower {
	case DatabaseSQLite.String():
		return DatabaseSQLite, nil
	case DatabaseInMemory.String():
		return DatabaseInMemory, nil
	default:
		return DatabaseNone, fmt.Errorf("DB type not one of 'sqlite' or 'inmem': %q", s)
	}
}

// Database contains configuration settings for connecting to a persistence
// layer.
type Database struct {
	// Type is the type of database the config refers to. It also
	// determines which of its other fields are valid.
	Type DBType `toml:"type"`

	// DataDir is the path on disk to a directory to use to store data in.
	// This is only applicable for certain DB types: SQLite.
	DataDir string `toml:"data_dir"`
}

// Validate returns an error if the Database does not have the correct
// fields set for its type.
func (db Database) Validate() error {
	switch db.Type {
	case DatabaseInMemory:
		return nil
	case DatabaseSQLite:
		if db.DataDir == "" {
			return fmt.Errorf("data_dir not set to path")
		}
		return nil
	case DatabaseNone:
		return fmt.Errorf("'none' DB is not valid")
	default:
		return fmt.Errorf("unknown database type: %q", db.Type.String())
	}
}

// ParseDBConnString parses a database connection string of the form
// "engine:params" (or just "engine" if no other params are required) into
// a valid Database config object. For example, "sqlite:/data" gives the
// DB type DatabaseSQLite storing persistence in files under the given
// dir, and "inmem" gives DatabaseInMemory.
func ParseDBConnString(s string) (Database, error) {
	var paramStr string
	dbParts := strings.SplitN(s, ":", 2)

	if len(dbParts) == 2 {
		paramStr = strings.TrimSpace(dbParts[1])
	}

	dbEng, err := ParseDBType(strings.TrimSpace(dbParts[0]))
	if err != nil {
		return Database{}, fmt.Errorf("unsupported DB engine: %w", err)
	}

	switch dbEng {
	case DatabaseInMemory:
		if paramStr != "" {
			return Database{}, fmt.Errorf("unsupported param(s) for in-memory DB engine: %s", paramStr)
		}
		return Database{Type: DatabaseInMemory}, nil
	case DatabaseSQLite:
		if paramStr == "" {
			return Database{}, fmt.Errorf("sqlite DB engine requires path to data directory after ':'")
		}
		return Database{Type: DatabaseSQLite, DataDir: paramStr}, nil
	case DatabaseNone:
		return Database{}, fmt.Errorf("cannot specify DB engine 'none' (perhaps you wanted 'inmem'?)")
	default:
		return Database{}, fmt.Errorf("unknown DB engine: %q", dbEng.String())
	}
}

// Config is the configuration for a kelpd server instance. Zero-valued
// fields are filled by FillDefaults.
type Config struct {
	// ListenAddress is the host:port the HTTP server binds to.
	ListenAddress string `toml:"listen_address"`

	// TokenSecret is the secret used for signing auth tokens. If not
	// provided, a default (dev-only) key is used.
	TokenSecret []byte `toml:"token_secret"`

	// DB is the configuration to use for connecting to the database. If
	// not provided, it defaults to an in-memory store.
	DB Database `toml:"db"`

	// UnauthDelayMillis is additional time (in milliseconds) to wait
	// before responding to an unauthorized or unauthenticated request, as
	// an anti-flood measure against naive non-parallel clients. Zero
	// means the default of 1000ms; a negative value disables the delay.
	UnauthDelayMillis int `toml:"unauth_delay_ms"`

	// ScriptTimeoutMillis bounds how long a single script run request may
	// execute before the server aborts it. Zero means the default of
	// 5000ms.
	ScriptTimeoutMillis int `toml:"script_timeout_ms"`
}

// UnauthDelay returns the configured UnauthDelayMillis as a
// time.Duration. Returns zero if UnauthDelayMillis is less than 1.
func (cfg Config) UnauthDelay() time.Duration {
	if cfg.UnauthDelayMillis < 1 {
		var dur time.Duration
		return dur
	}
	return time.Millisecond * time.Duration(cfg.UnauthDelayMillis)
}

// ScriptTimeout returns the configured ScriptTimeoutMillis as a
// time.Duration.
func (cfg Config) ScriptTimeout() time.Duration {
	if cfg.ScriptTimeoutMillis < 1 {
		return 5 * time.Second
	}
	return time.Millisecond * time.Duration(cfg.ScriptTimeoutMillis)
}

// FillDefaults returns a new Config identical to cfg but with unset
// values set to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.ListenAddress == "" {
		newCFG.ListenAddress = ":8080"
	}
	if newCFG.TokenSecret == nil {
		newCFG.TokenSecret = []byte("DEFAULT_TOKEN_SECRET-DO_NOT_USE_IN_PROD!")
	}
	if newCFG.DB.Type == DatabaseNone {
		newCFG.DB = Database{Type: DatabaseInMemory}
	}
	if newCFG.UnauthDelayMillis == 0 {
		newCFG.UnauthDelayMillis = 1000
	}
	if newCFG.ScriptTimeoutMillis == 0 {
		newCFG.ScriptTimeoutMillis = 5000
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set.
// Call Validate on the return of FillDefaults if defaults are intended
// to be used.
func (cfg Config) Validate() error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address: must not be empty")
	}
	if len(cfg.TokenSecret) < MinSecretSize {
		return fmt.Errorf("token_secret: must be at least %d bytes, but is %d", MinSecretSize, len(cfg.TokenSecret))
	}
	if len(cfg.TokenSecret) > MaxSecretSize {
		return fmt.Errorf("token_secret: must be no more than %d bytes, but is %d", MaxSecretSize, len(cfg.TokenSecret))
	}
	if err := cfg.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	return nil
}

// Load reads a TOML config file from path and returns the parsed Config.
// It does not fill defaults or validate; call FillDefaults and Validate
// on the result as needed.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}
