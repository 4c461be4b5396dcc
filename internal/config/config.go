// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. PASSGUARD_DSN.
const EnvPrefix = "PASSGUARD"

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Options holds the configuration values for the application.
type Options struct {
	// Driver selects the storage backend: sqlite, postgres or bolt.
	Driver string `mapstructure:"driver"`

	// DSN is the postgres connection string or the sqlite/bolt file path.
	DSN string `mapstructure:"dsn"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Cipher selects the AEAD for stored secrets: aes-gcm or xchacha20poly1305.
	Cipher string `mapstructure:"cipher"`

	// KeySalt and HashPepper override the built-in salts. Changing either
	// makes existing data unreadable.
	KeySalt    string `mapstructure:"key_salt"`
	HashPepper string `mapstructure:"hash_pepper"`

	// SweepInterval enables the orphaned secret sweeper when positive.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// SignInRate limits sign-in attempts per second; zero disables the limit.
	SignInRate  float64 `mapstructure:"signin_rate"`
	SignInBurst int     `mapstructure:"signin_burst"`

	// ConfigPath is the config file that was read, if any.
	ConfigPath string `mapstructure:"-"`
}

// Default returns the built-in configuration.
func Default() Options {
	return Options{
		Driver:      DriverSQLite,
		DSN:         "passguard.db",
		LogLevel:    "info",
		Cipher:      "aes-gcm",
		SignInBurst: 5,
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"driver":         "driver",
	"dsn":            "dsn",
	"log-level":      "log_level",
	"cipher":         "cipher",
	"key-salt":       "key_salt",
	"hash-pepper":    "hash_pepper",
	"sweep-interval": "sweep_interval",
	"signin-rate":    "signin_rate",
	"signin-burst":   "signin_burst",
}

// BindFlags registers the configuration flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.StringP("config", "c", "", "path to config file (json, yaml or toml)")
	fs.String("driver", d.Driver, "storage driver: sqlite | postgres | bolt")
	fs.StringP("dsn", "d", d.DSN, "postgres DSN or sqlite/bolt file path")
	fs.String("log-level", d.LogLevel, "log level: debug | info | warn | error")
	fs.String("cipher", d.Cipher, "secret cipher: aes-gcm | xchacha20poly1305")
	fs.String("key-salt", d.KeySalt, "salt for per-account key derivation")
	fs.String("hash-pepper", d.HashPepper, "pepper for credential hashing")
	fs.Duration("sweep-interval", d.SweepInterval, "orphaned secret sweep interval (0 disables)")
	fs.Float64("signin-rate", d.SignInRate, "sign-in attempts per second (0 = unlimited)")
	fs.Int("signin-burst", d.SignInBurst, "sign-in burst size")
}

// Load resolves the options from defaults, the config file, PASSGUARD_*
// environment variables and the flags in fs, in increasing precedence.
// fs may be nil.
func Load(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("driver", d.Driver)
	v.SetDefault("dsn", d.DSN)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cipher", d.Cipher)
	v.SetDefault("key_salt", d.KeySalt)
	v.SetDefault("hash_pepper", d.HashPepper)
	v.SetDefault("sweep_interval", d.SweepInterval)
	v.SetDefault("signin_rate", d.SignInRate)
	v.SetDefault("signin_burst", d.SignInBurst)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	configPath := os.Getenv(EnvPrefix + "_CONFIG")
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
		if f := fs.Lookup("config"); f != nil && f.Changed {
			configPath = f.Value.String()
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("passguard")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "passguard"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	opts := &Options{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	opts.ConfigPath = v.ConfigFileUsed()

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return opts, nil
}

// Validate checks configuration validity.
func (o *Options) Validate() error {
	switch o.Driver {
	case DriverSQLite, DriverPostgres, DriverBolt:
	default:
		return fmt.Errorf("unknown driver: %q", o.Driver)
	}

	if o.DSN == "" {
		return errors.New("dsn is required")
	}

	switch o.Cipher {
	case "aes-gcm", "xchacha20poly1305":
	default:
		return fmt.Errorf("unknown cipher: %q", o.Cipher)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(o.LogLevel)] {
		return fmt.Errorf("invalid log level: %s", o.LogLevel)
	}

	if o.SweepInterval < 0 {
		return errors.New("sweep_interval must not be negative")
	}
	if o.SignInRate < 0 {
		return errors.New("signin_rate must not be negative")
	}
	if o.SignInRate > 0 && o.SignInBurst < 1 {
		return errors.New("signin_burst must be positive when signin_rate is set")
	}

	return nil
}
