// Package config loads drinklog settings from an optional YAML file, an
// optional .env file and DRINKLOG_* environment variables.
//
// Precedence, highest first: explicit overrides (command-line flags),
// environment, config file, defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
	BackendMemory = "memory"

	// DefaultGoal is the daily target in ounces.
	DefaultGoal = 68.0

	envPrefix = "DRINKLOG"
)

var (
	validBackends   = []string{BackendSQLite, BackendJSON, BackendMemory}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Backend     string    `mapstructure:"backend"`
	DBPath      string    `mapstructure:"db_path"`
	DBMustExist bool      `mapstructure:"db_must_exist"` // refuse to create a missing file
	Goal        float64   `mapstructure:"goal"`
	BackupDir   string    `mapstructure:"backup_dir"`
	Log         LogConfig `mapstructure:"log"`
}

// Options says where to look. Zero value: ./drinklog.yaml and ./.env, both optional.
type Options struct {
	ConfigFile string // explicit path; must exist when set
	EnvFile    string // defaults to ".env"; missing is fine
	Overrides  map[string]any
}

// Load builds a Config. It does not validate; call Validate.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("drinklog")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// environment overrides, e.g. DRINKLOG_DB_PATH=/tmp/x.db, DRINKLOG_LOG_LEVEL=debug
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, val := range opts.Overrides {
		v.Set(key, val)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Log.Format = strings.ToLower(c.Log.Format)
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendSQLite)
	v.SetDefault("db_path", "drinklog.db")
	v.SetDefault("db_must_exist", false)
	v.SetDefault("goal", DefaultGoal)
	v.SetDefault("backup_dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if !slices.Contains(validBackends, c.Backend) {
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of %v", c.Backend, validBackends))
	}

	if c.Backend != BackendMemory && strings.TrimSpace(c.DBPath) == "" {
		problems = append(problems, fmt.Sprintf("db_path cannot be empty when using %s backend", c.Backend))
	}

	if c.Goal < 0 {
		problems = append(problems, fmt.Sprintf("invalid goal %v: must not be negative", c.Goal))
	}

	if c.BackupDir != "" {
		if info, err := os.Stat(c.BackupDir); err == nil && !info.IsDir() {
			problems = append(problems, fmt.Sprintf("backup_dir '%s' is not a directory", c.BackupDir))
		}
	}

	if !slices.Contains(validLogLevels, c.Log.Level) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.Log.Level, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.Log.Format, validLogFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
