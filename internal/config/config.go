package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the application configuration. Every field can be overridden
// from the environment.
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
		Mode        string `yaml:"mode" env:"SERVER_MODE" env-default:"development"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH" env-default:"uploads"`
		BaseURL     string `yaml:"base_url" env:"SERVER_BASE_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
		Port            string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
		User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
		Password        string        `yaml:"password" env:"DB_PASSWORD" env-default:"postgres"`
		DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"clubhub"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
		MaxIdleConns    int32         `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
		MaxOpenConns    int32         `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"20"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION" env-default:"1h"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER" env-default:"clubhub.app"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
	} `yaml:"logging"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
		Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"clubhub.events"`
	} `yaml:"kafka"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
		Port      int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
		Username  string `yaml:"username" env:"SMTP_USERNAME"`
		Password  string `yaml:"password" env:"SMTP_PASSWORD"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME" env-default:"Student Union"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL" env-default:"noreply@clubhub.app"`
		UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS" env-default:"false"`
	} `yaml:"smtp"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL" env-default:"su@clubhub.app"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig reads configPath when it exists and applies environment
// overrides and defaults on top.
func LoadConfig(configPath string) (*Config, error) {
	var cfg Config
	read := func() error { return cleanenv.ReadEnv(&cfg) }
	if _, err := os.Stat(configPath); err == nil {
		read = func() error { return cleanenv.ReadConfig(configPath, &cfg) }
	}
	if err := read(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validateConfig(c *Config) error {
	var errs []error
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessTokenExpiration); err != nil {
		errs = append(errs, fmt.Errorf("jwt.access_token_expiration: %w", err))
	}
	if c.Database.MaxOpenConns < c.Database.MaxIdleConns {
		errs = append(errs, fmt.Errorf("database.max_open_conns (%d) is below max_idle_conns (%d)",
			c.Database.MaxOpenConns, c.Database.MaxIdleConns))
	}
	return errors.Join(errs...)
}

// GetPostgresConnectionString builds the pgx DSN; credentials are URL-escaped
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.DBName,
		RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
	}
	return dsn.String()
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// PublicBaseURL returns the externally visible URL of the server
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}
