package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort        string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	Storage         Storage       `yaml:"storage"`
	Redis           Redis         `yaml:"redis"`
}

type Storage struct {
	Driver     string        `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"STORAGE_SESSION_TTL" env-default:"24h"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

// MustLoad - load .env (if present) and then the config file, with environment overrides.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Storage.Driver {
	case StorageMemory, StorageRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStorageDriver, that.Storage.Driver)
	}
}

// GetRedisAddr - host:port, or "" when no host is configured.
func (that *Redis) GetRedisAddr() string {
	if that.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
