package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when neither --config nor DAYPLANNER_CONFIG is set.
const DefaultPath = "config.yaml"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	Verbose  bool           `yaml:"verbose"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	CSRF            bool          `yaml:"csrf"`
	LoginRateLimit  int           `yaml:"login_rate_limit" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SessionConfig struct {
	Secret       string        `yaml:"secret" validate:"required,min=16"`
	TTL          time.Duration `yaml:"ttl" validate:"gt=0"`
	SecureCookie bool          `yaml:"secure_cookie"`
	Issuer       string        `yaml:"issuer"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" validate:"oneof=postgres sqlite"`
	Host     string `yaml:"host" validate:"required_if=Driver postgres"`
	Port     int    `yaml:"port" validate:"required_if=Driver postgres"`
	User     string `yaml:"user" validate:"required_if=Driver postgres"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required_if=Driver postgres"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
	// Path is the database file when Driver is sqlite.
	Path string `yaml:"path" validate:"required_if=Driver sqlite"`
}

// URL builds the postgres connection string.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.DBName,
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(d.SSLMode)
	}
	return u.String()
}

// Default returns the settings used for anything config.yaml leaves out.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			CSRF:            true,
			LoginRateLimit:  10,
			ShutdownTimeout: 30 * time.Second,
		},
		Session: SessionConfig{
			TTL:    14 * 24 * time.Hour,
			Issuer: "dayplanner",
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 10,
			MinConns: 2,
		},
	}
}

// Path resolves which config file to read.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("DAYPLANNER_CONFIG"); env != "" {
		return env
	}
	return DefaultPath
}

// Load reads config.yaml from the working directory.
func Load() (*Config, error) {
	return LoadFile(Path(""))
}

// LoadFile reads the config file at path, substituting ${VAR} placeholders
// from the environment before parsing.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	content := expandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	// DB_PORT arrives as a string and wins over the file
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT value: %w", err)
		}
		cfg.Database.Port = port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func expandEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		placeholder := "${" + pair[0] + "}"
		content = strings.ReplaceAll(content, placeholder, pair[1])
	}
	return content
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
