package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/marshallshelly/pebble-mysql/pkg/driver"
	"github.com/marshallshelly/pebble-mysql/pkg/loader"
	"github.com/marshallshelly/pebble-mysql/pkg/migration"
	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
)

// AppFs is the filesystem the CLI reads models and env files from.
var AppFs = afero.NewOsFs()

// Config holds the CLI configuration
type Config struct {
	DatabaseURL string
	ModelsPath  string
	PlanDir     string
	Charset     string
	Collation   string
	SlowQuery   string
	Engine      string
}

// LoadConfig loads configuration from .pebble.yaml, PEBBLE_* environment
// variables and .env files, in increasing priority.
func LoadConfig() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(".pebble")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "pebble"))

	v.SetEnvPrefix("PEBBLE")
	v.AutomaticEnv()

	v.SetDefault("models_path", "./models")
	v.SetDefault("plan_dir", "./schema")
	v.SetDefault("slow_query", "")

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	// .env.local overrides .env
	if _, err := AppFs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return nil, fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return &Config{
		DatabaseURL: v.GetString("database_url"),
		ModelsPath:  v.GetString("models_path"),
		PlanDir:     v.GetString("plan_dir"),
		Charset:     v.GetString("charset"),
		Collation:   v.GetString("collation"),
		SlowQuery:   v.GetString("slow_query"),
		Engine:      v.GetString("engine"),
	}, nil
}

func newPlanner() *migration.Planner {
	return migration.NewPlannerWithOptions(migration.PlannerOptions{Engine: cfg.Engine})
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadCatalog() (*registry.Catalog, error) {
	cat, err := loader.New(AppFs).LoadCatalog(cfg.ModelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	return cat, nil
}

// connectionConfig parses the DSN and applies the configured charset.
func connectionConfig() (*runtime.Config, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("--db flag or PEBBLE_DATABASE_URL is required")
	}
	rc, err := runtime.ConfigFromDSN(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Charset != "" {
		rc.Charset = cfg.Charset
	}
	if cfg.Collation != "" {
		rc.Collation = cfg.Collation
	}
	return rc, nil
}

// openDriver builds and connects a driver for the configured database.
func openDriver(ctx context.Context, cat *registry.Catalog) (*driver.Driver, error) {
	rc, err := connectionConfig()
	if err != nil {
		return nil, err
	}

	opts := []driver.Option{
		driver.WithLogger(newLogger()),
		driver.WithPlanner(newPlanner()),
	}
	if cfg.SlowQuery != "" {
		d, err := time.ParseDuration(cfg.SlowQuery)
		if err != nil {
			return nil, fmt.Errorf("invalid slow_query %q: %w", cfg.SlowQuery, err)
		}
		opts = append(opts, driver.WithSlowQueryThreshold(d))
	}

	factory := driver.NewFactory()
	factory.Register("default", rc, cat, opts...)
	return factory.Instance(ctx, "default")
}
