// Package config provides Viper-based configuration loading for the battle server and CLI.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. BATTLESIM_HTTP_PORT.
const EnvPrefix = "BATTLESIM"

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on preset and snapshot persistence. When false the other
	// fields are not validated.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output lists log sinks: "stderr", "stdout" or file paths. Empty means stderr.
	Output []string `mapstructure:"output"`
}

// BattleConfig holds battle engine settings.
type BattleConfig struct {
	// SettingsDir is where battle settings and snapshots are saved.
	SettingsDir string `mapstructure:"settings_dir"`
	// AutoRoundInterval is the pause between rounds when a battle plays itself.
	AutoRoundInterval time.Duration `mapstructure:"auto_round_interval"`
	// MaxRounds caps automatic play; 0 means no cap.
	MaxRounds int `mapstructure:"max_rounds"`
	// Seed makes every battle's dice reproducible. 0 selects crypto/rand.
	Seed uint64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Battle   BattleConfig   `mapstructure:"battle"`
}

// Validate checks every section and reports all violations at once. The
// database section is only checked when enabled.
func (c Config) Validate() error {
	errs := c.Logging.problems()
	if c.Database.Enabled {
		errs = append(errs, c.Database.problems()...)
	}
	errs = append(errs, c.HTTP.problems()...)
	errs = append(errs, c.Battle.problems()...)
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "console"}
	validSSL     = []string{"disable", "require", "verify-ca", "verify-full"}
)

func oneOf(field, got string, allowed []string) []string {
	if slices.Contains(allowed, got) {
		return nil
	}
	return []string{fmt.Sprintf("%s must be one of [%s], got %q", field, strings.Join(allowed, ", "), got)}
}

func validPort(field string, port int) []string {
	if port < 1 || port > 65535 {
		return []string{fmt.Sprintf("%s must be 1-65535, got %d", field, port)}
	}
	return nil
}

func (l LoggingConfig) problems() []string {
	return append(oneOf("logging.level", l.Level, validLevels), oneOf("logging.format", l.Format, validFormats)...)
}

func (d DatabaseConfig) problems() []string {
	errs := validPort("database.port", d.Port)
	for _, f := range []struct{ name, v string }{{"database.host", d.Host}, {"database.user", d.User}, {"database.name", d.Name}} {
		if f.v == "" {
			errs = append(errs, f.name+" must not be empty")
		}
	}
	errs = append(errs, oneOf("database.sslmode", d.SSLMode, validSSL)...)
	switch {
	case d.MaxConns < 1:
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	case d.MinConns < 0:
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	case d.MinConns > d.MaxConns:
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return errs
}

func (h HTTPConfig) problems() []string {
	errs := validPort("http.port", h.Port)
	for _, f := range []struct {
		name string
		d    time.Duration
	}{
		{"http.read_timeout", h.ReadTimeout},
		{"http.write_timeout", h.WriteTimeout},
		{"http.shutdown_timeout", h.ShutdownTimeout},
	} {
		if f.d < 0 {
			errs = append(errs, f.name+" must not be negative")
		}
	}
	return errs
}

func (b BattleConfig) problems() []string {
	var errs []string
	if b.SettingsDir == "" {
		errs = append(errs, "battle.settings_dir must not be empty")
	}
	if b.AutoRoundInterval <= 0 {
		errs = append(errs, fmt.Sprintf("battle.auto_round_interval must be positive, got %s", b.AutoRoundInterval))
	}
	if b.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_rounds must be >= 0, got %d", b.MaxRounds))
	}
	return errs
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus the environment.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", []string{"stderr"})

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battlesim")
	v.SetDefault("database.password", "battlesim")
	v.SetDefault("database.name", "battlesim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("battle.settings_dir", "battle_settings")
	v.SetDefault("battle.auto_round_interval", "1s")
	v.SetDefault("battle.max_rounds", 100)
	v.SetDefault("battle.seed", 0)
}
