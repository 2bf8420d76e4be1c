package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Store    StoreConfig    `yaml:"store"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Quiz     QuizConfig     `yaml:"quiz"`
}

type ServerConfig struct {
	Port           string `yaml:"port" env:"PORT"`
	RequestTimeout string `yaml:"requestTimeout" env:"REQUEST_TIMEOUT"`
	CORSOrigin     string `yaml:"corsOrigin" env:"CORS_ORIGIN"`
}

type StoreConfig struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"POSTGRES_URL"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

type QuizConfig struct {
	Award           int `yaml:"award" env:"QUIZ_AWARD"`
	LeaderboardSize int `yaml:"leaderboardSize" env:"LEADERBOARD_SIZE"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is tolerated when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// StoreDriver returns the configured driver, inferring one from the connection
// settings when none is set.
func (c Config) StoreDriver() (string, error) {
	switch c.Store.Driver {
	case DriverMemory, DriverPostgres, DriverRedis, DriverSQLite:
		return c.Store.Driver, nil
	case "":
	default:
		return "", fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch {
	case c.Postgres.URL != "":
		return DriverPostgres, nil
	case c.Redis.Addr != "":
		return DriverRedis, nil
	case c.SQLite.Path != "":
		return DriverSQLite, nil
	}
	return DriverMemory, nil
}

// Award returns the points per correct answer, defaulting to 100.
func (c Config) Award() int {
	if c.Quiz.Award > 0 {
		return c.Quiz.Award
	}
	return 100
}

// Duration parses a duration string or returns the fallback if empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
