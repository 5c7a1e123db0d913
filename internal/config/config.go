package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environments accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// defaultJWTSecret is only acceptable outside production.
const defaultJWTSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
// It is built once at startup and passed to the components that need it; nothing mutates it afterwards.
type Config struct {
	Env                string
	ServerPort         string
	Database           DatabaseConfig
	Redis              RedisConfig
	JWTSecret          string
	SwaggerHost        string
	Logging            LoggingConfig
	CORSAllowedOrigins []string
}

// DatabaseConfig selects the GORM dialect and connection string.
type DatabaseConfig struct {
	Driver string
	DSN    string
	// Reset drops all tables before migrating. Development only.
	Reset bool
}

// RedisConfig contains the cache connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first if present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))
	format := "text"
	if env == EnvProduction {
		format = "json"
	}

	return &Config{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			DSN:    getEnv("DB_DSN", "user:password@tcp(localhost:3306)/hotel?charset=utf8mb4&parseTime=True&loc=Local"),
			Reset:  getEnvBool("RESET_DB", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", format),
		},
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
	}
}

// Validate reports configuration that the server must not start with.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}

	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Reset {
			return fmt.Errorf("RESET_DB is not allowed in production")
		}
	}
	return nil
}

// IsProduction reports whether the process runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
