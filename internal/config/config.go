package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CatalogFixture  = "fixture"
	CatalogDatabase = "database"
)

// Config holds all application configuration
type Config struct {
	BotToken    string `env:"BOT_TOKEN" validate:"required_unless=BotDisabled true"`
	BotDisabled bool   `env:"BOT_DISABLED"`
	HTTPAddr    string `env:"HTTP_ADDR" validate:"required"`
	Timezone    string `env:"TIMEZONE" validate:"required,timezone"`
	Store       StoreConfig
	Catalog     CatalogConfig
	Database    DatabaseConfig
}

// StoreConfig selects the review store
type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER" validate:"oneof=postgres sqlite"`
	SQLitePath string `env:"SQLITE_PATH" validate:"required_if=Driver sqlite"`
}

// CatalogConfig selects where items are read from
type CatalogConfig struct {
	Source    string `env:"CATALOG_SOURCE" validate:"oneof=fixture database"`
	CacheSize int    `env:"CATALOG_CACHE_SIZE" validate:"gte=1"`
	// Seed upserts the embedded fixtures into the items table on startup
	Seed bool `env:"CATALOG_SEED"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" validate:"omitempty,numeric"`
	Name     string `env:"DB_NAME"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cacheSize, err := getEnvInt("CATALOG_CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		BotDisabled: getEnvBool("BOT_DISABLED", false),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		Timezone:    getEnv("TIMEZONE", "Asia/Manila"),
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", DriverPostgres),
			SQLitePath: getEnv("SQLITE_PATH", "cebuano.db"),
		},
		Catalog: CatalogConfig{
			Source:    getEnv("CATALOG_SOURCE", CatalogFixture),
			CacheSize: cacheSize,
			Seed:      getEnvBool("CATALOG_SEED", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "cebuano"),
			User:     getEnv("DB_USER", "cebuano"),
			Password: os.Getenv("DB_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-section rules
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}

	// Validate required fields
	if c.Store.Driver == DriverPostgres && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Catalog.Source == CatalogDatabase && c.Store.Driver != DriverPostgres {
		return fmt.Errorf("CATALOG_SOURCE=database requires STORE_DRIVER=postgres")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "timezone":
		return fmt.Sprintf("%s is not a known timezone", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// Location returns the timezone that defines calendar-day boundaries
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
