// Package config resolves CLI settings from flags, .sequel.yaml, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config files and .env files are read from
var AppFs = afero.NewOsFs()

const (
	// FileName is the base name of the project config file
	FileName = ".sequel"
	// EnvPrefix prefixes every environment override, e.g. SEQUEL_SCHEMA_PATH
	EnvPrefix = "SEQUEL"
)

// Config holds the application configuration
type Config struct {
	SchemaPath        string `mapstructure:"schema_path"`
	OutputPath        string `mapstructure:"output_path"`
	Package           string `mapstructure:"package"`
	Database          string `mapstructure:"database"`
	Driver            string `mapstructure:"driver"`
	DropUnknownTables bool   `mapstructure:"drop_unknown_tables"`
	MinimumVersion    string `mapstructure:"minimum_version"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// Defaults are applied before any file or environment value
var Defaults = map[string]any{
	"schema_path":         "schema.sequel",
	"output_path":         "./models",
	"package":             "models",
	"database":            "app.db",
	"driver":              "sqlite3",
	"drop_unknown_tables": false,
	"minimum_version":     "",
}

// Load reads configuration into v. An explicit file must exist; otherwise
// .sequel.yaml is searched in the working directory and the home directory.
// DATABASE_URL, from the process or from .env/.env.local, overrides the
// database setting.
func Load(v *viper.Viper, file string) (*Config, error) {
	v.SetFs(AppFs)
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}

	if err := loadDotEnv(".env", false); err != nil {
		return nil, err
	}
	if err := loadDotEnv(".env.local", true); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "sequel"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database = url
	}
	cfg.Database = DatabasePath(cfg.Database)

	path, err := homedir.Expand(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to expand database path: %w", err)
	}
	cfg.Database = path
	return cfg, nil
}

// Save writes the project settings of cfg to path as YAML
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.Set("schema_path", cfg.SchemaPath)
	v.Set("output_path", cfg.OutputPath)
	v.Set("package", cfg.Package)
	v.Set("database", cfg.Database)
	v.Set("driver", cfg.Driver)

	if dir := filepath.Dir(path); dir != "." {
		if err := AppFs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// DatabasePath turns a DATABASE_URL style value into a path both drivers accept.
// sqlite://app.db and sqlite:app.db become app.db; file: URIs are kept.
func DatabasePath(url string) string {
	for _, prefix := range []string{"sqlite3://", "sqlite://", "sqlite3:", "sqlite:"} {
		if strings.HasPrefix(url, prefix) {
			return strings.TrimPrefix(url, prefix)
		}
	}
	return url
}

// loadDotEnv copies the variables of a .env file into the process environment.
// Existing variables win unless override is set. A missing file is not an error.
func loadDotEnv(path string, override bool) error {
	data, err := afero.ReadFile(AppFs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	env, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for k, val := range env {
		if _, set := os.LookupEnv(k); set && !override {
			continue
		}
		if err := os.Setenv(k, val); err != nil {
			return err
		}
	}
	return nil
}
