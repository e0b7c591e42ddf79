// Package config loads service settings from flags, PORTFOLIO_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite  = "sqlite"
	DriverSurreal = "surreal"
	DriverNone    = "none"
)

// DefaultFile is read when no --config flag is given. It may be absent.
const DefaultFile = "portfolio.yaml"

type Config struct {
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	DBPath      string `mapstructure:"db_path"`
	SiteURL     string `mapstructure:"site_url"`
	CareerStart string `mapstructure:"career_start"` // YYYY-MM-DD

	Store  StoreConfig  `mapstructure:"store"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Admin  AdminConfig  `mapstructure:"admin"`
	Upload UploadConfig `mapstructure:"upload"`
}

// StoreConfig selects the document store that backs the remote tier.
// The SQLite file always backs the local cache regardless of driver.
type StoreConfig struct {
	Driver  string        `mapstructure:"driver"`
	Surreal SurrealConfig `mapstructure:"surreal"`
}

type SurrealConfig struct {
	URL       string `mapstructure:"url"`
	Namespace string `mapstructure:"namespace"`
	Database  string `mapstructure:"database"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

type CacheConfig struct {
	// KeepStale merges cached records even after the remote store confirmed
	// a fresh read. Off by default, so deletions made in the store stop
	// showing up once the next load succeeds.
	KeepStale bool `mapstructure:"keep_stale"`
}

type AdminConfig struct {
	Email        string       `mapstructure:"email"`
	PasswordHash string       `mapstructure:"password_hash"`
	JWTSecret    string       `mapstructure:"jwt_secret"`
	GitHub       GitHubConfig `mapstructure:"github"`
}

type GitHubConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	CallbackURL  string `mapstructure:"callback_url"`
	AllowedLogin string `mapstructure:"allowed_login"`
}

type UploadConfig struct {
	Dir           string `mapstructure:"dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MaxBytes      int64  `mapstructure:"max_bytes"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Port:     8080,
		LogLevel: "info",
		DBPath:   "data/portfolio.db",
		SiteURL:  "http://localhost:8080",
		Store: StoreConfig{
			Driver: DriverSQLite,
		},
		Upload: UploadConfig{
			Dir:      "data/uploads",
			MaxBytes: 5 << 20,
		},
	}
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"port":      "port",
	"log-level": "log_level",
	"db-path":   "db_path",
	"driver":    "store.driver",
}

// Load builds a Config. file may be empty, in which case DefaultFile is
// tried and silently skipped when missing. flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(strings.TrimSuffix(DefaultFile, ".yaml"))
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("config: binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: reading %s: %w", configName(file), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configName(file string) string {
	if file == "" {
		return DefaultFile
	}
	return file
}

// setDefaults registers every key so that AutomaticEnv can see it during
// Unmarshal; viper only consults the environment for keys it knows about.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("port", d.Port)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("site_url", d.SiteURL)
	v.SetDefault("career_start", d.CareerStart)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.surreal.url", d.Store.Surreal.URL)
	v.SetDefault("store.surreal.namespace", d.Store.Surreal.Namespace)
	v.SetDefault("store.surreal.database", d.Store.Surreal.Database)
	v.SetDefault("store.surreal.username", d.Store.Surreal.Username)
	v.SetDefault("store.surreal.password", d.Store.Surreal.Password)

	v.SetDefault("cache.keep_stale", d.Cache.KeepStale)

	v.SetDefault("admin.email", d.Admin.Email)
	v.SetDefault("admin.password_hash", d.Admin.PasswordHash)
	v.SetDefault("admin.jwt_secret", d.Admin.JWTSecret)
	v.SetDefault("admin.github.client_id", d.Admin.GitHub.ClientID)
	v.SetDefault("admin.github.client_secret", d.Admin.GitHub.ClientSecret)
	v.SetDefault("admin.github.callback_url", d.Admin.GitHub.CallbackURL)
	v.SetDefault("admin.github.allowed_login", d.Admin.GitHub.AllowedLogin)

	v.SetDefault("upload.dir", d.Upload.Dir)
	v.SetDefault("upload.public_base_url", d.Upload.PublicBaseURL)
	v.SetDefault("upload.max_bytes", d.Upload.MaxBytes)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverSurreal, DriverNone:
	default:
		return fmt.Errorf("config: unknown store driver %q (want sqlite, surreal or none)", c.Store.Driver)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("config: upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.CareerStart != "" {
		if _, err := time.Parse(time.DateOnly, c.CareerStart); err != nil {
			return fmt.Errorf("config: career_start must be YYYY-MM-DD: %w", err)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// CareerStartDate returns the parsed career start, or the zero time when
// unset. Validate has already rejected malformed values.
func (c Config) CareerStartDate() time.Time {
	t, _ := time.Parse(time.DateOnly, c.CareerStart)
	return t
}

// AuthEnabled reports whether admin sessions can be issued at all.
func (c Config) AuthEnabled() bool {
	return c.Admin.JWTSecret != ""
}

// GitHubEnabled reports whether the GitHub admin login is usable.
func (c Config) GitHubEnabled() bool {
	g := c.Admin.GitHub
	return c.AuthEnabled() && g.ClientID != "" && g.ClientSecret != "" && g.AllowedLogin != ""
}

// PublicURL returns the base URL that uploaded files are served under.
func (c Config) PublicURL() string {
	if c.Upload.PublicBaseURL != "" {
		return strings.TrimRight(c.Upload.PublicBaseURL, "/")
	}
	return strings.TrimRight(c.SiteURL, "/")
}
