package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configFileEnvName names the environment variable that points at an optional config file.
const configFileEnvName = "CATALOG_CONFIG_FILE"

// Supported values of DB_DRIVER.
const (
	DriverMongo    = "mongodb"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config groups the application configuration. Values come from an optional
// config file and are overridden by environment variables.
type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Log      LogConfig
	DB       DBConfig
	RabbitMQ RabbitMQConfig
	Tracing  TracingConfig
	Docs     DocsConfig
}

// AppConfig general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig HTTP server settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig logger settings.
type LogConfig struct {
	Level string // trace, debug, info, warn, error
}

// DBConfig selects and configures the catalog store.
// MongoURI and Name are used by the mongodb driver, DSN by postgres and sqlite.
type DBConfig struct {
	Driver   string
	MongoURI string
	Name     string
	DSN      string
	Timeout  time.Duration
}

// RabbitMQConfig catalog event publishing. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

// Enabled reports whether catalog events should be published.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// TracingConfig OpenTelemetry export. An empty endpoint keeps the no-op tracer.
type TracingConfig struct {
	Endpoint string
}

// Enabled reports whether spans are exported.
func (c TracingConfig) Enabled() bool {
	return c.Endpoint != ""
}

// DocsConfig API documentation.
type DocsConfig struct {
	Path string
}

// Load reads the configuration. args are the command line arguments without the
// program name; `--config <file>` (or CATALOG_CONFIG_FILE) selects an optional
// config file. Environment variables always take precedence over the file.
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("catalog", pflag.ContinueOnError)
	configFile := flags.String("config", "", "path to a config file (yaml, json or env)")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := *configFile
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		path = env
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			Driver:   strings.ToLower(v.GetString("DB_DRIVER")),
			MongoURI: v.GetString("MONGO_URI"),
			Name:     v.GetString("DB_NAME"),
			DSN:      v.GetString("DATABASE_DSN"),
			Timeout:  v.GetDuration("DB_TIMEOUT"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Tracing: TracingConfig{
			Endpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
		Docs: DocsConfig{
			Path: v.GetString("DOCS_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "catalog")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 3000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("DB_NAME", "catalog")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_TIMEOUT", 10*time.Second)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("DOCS_PATH", "./docs/swagger.json")
}

// Validate checks the combinations Load cannot default away.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	if c.DB.Timeout <= 0 {
		return errors.New("DB_TIMEOUT must be positive")
	}
	switch c.DB.Driver {
	case DriverMongo:
		if c.DB.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongodb driver")
		}
		if c.DB.Name == "" {
			return errors.New("DB_NAME is required for the mongodb driver")
		}
	case DriverPostgres, DriverSQLite:
		if c.DB.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s driver", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}
