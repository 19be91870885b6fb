// Package config предоставялет структуры и функции для парсинга и загрузки конфига
// серверных сервисов (auth-service, zecko-api) и CLI-клиента.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Режимы передачи учётного артефакта между клиентом и сервером.
const (
	TransportToken  = "token"
	TransportCookie = "cookie"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	GRPCAuthAddress         string `yaml:"grpc_auth_address" env-default:"localhost:50051"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Auth                    `yaml:"auth"`
	RateLimit               `yaml:"rate_limit"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	UserCacheTTL time.Duration `yaml:"user_cache_ttl" env-default:"5m"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ настройки публикации событий аутентификации.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url"`
	Exchange   string        `yaml:"exchange" env-default:"auth.events"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Auth определяет, как сессионный артефакт передаётся клиенту.
type Auth struct {
	Transport    string `yaml:"transport" env-default:"token"`
	CookieName   string `yaml:"cookie_name" env-default:"zecko_session"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

// RateLimit ограничивает частоту попыток входа и регистрации с одного адреса.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

// Scheduler настройки периодической проверки истёкших подписок.
type Scheduler struct {
	ExpiryInterval time.Duration `yaml:"expiry_interval" env-default:"1h"`
}

// Load читает и проверяет конфиг по указанному пути.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига по пути из CONFIG_PATH, завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Validate проверяет взаимоисключающие и обязательные настройки.
func (c *Config) Validate() error {
	if c.Transport != TransportToken && c.Transport != TransportCookie {
		return fmt.Errorf("auth.transport must be %q or %q, got %q", TransportToken, TransportCookie, c.Transport)
	}
	if c.JWTSecretKey == "" {
		return errors.New("jwttoken.jwt_secret_key is required")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"GRPCAuthAddress: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Auth:\n"+
			"  Transport: %s\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.GRPCAuthAddress,
		c.AddressRedis,
		c.DB,
		c.MaxRetries,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.Transport,
		c.TokenTTL,
	)
}

// ClientConfig настройки CLI-клиента, читаются из переменных окружения.
type ClientConfig struct {
	BaseURL        string        `env:"ZECKO_BASE_URL" env-default:"http://localhost:8080"`
	Transport      string        `env:"ZECKO_TRANSPORT" env-default:"token"`
	PollInterval   time.Duration `env:"ZECKO_POLL_INTERVAL" env-default:"30s"`
	RequestTimeout time.Duration `env:"ZECKO_REQUEST_TIMEOUT" env-default:"10s"`
	StorePath      string        `env:"ZECKO_STORE_PATH" env-default:".zecko/local.db"`
}

// LoadClient читает настройки клиента из окружения.
func LoadClient() (*ClientConfig, error) {
	const op = "config.LoadClient"
	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}
