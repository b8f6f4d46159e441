// Package config описывает конфигурацию сервера rentspace и её загрузку
// из YAML-файла с наложением переменных окружения.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Драйверы хранилища учетных данных
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config корневая конфигурация сервера.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг -config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл config.yaml из рабочей директории;
//  4. только переменные окружения.
type Config struct {
	Env            string          `yaml:"env" env:"ENV" env-default:"local"`
	HTTP           HTTPConfig      `yaml:"http"`
	Auth           AuthConfig      `yaml:"auth"`
	OTP            OTPConfig       `yaml:"otp"`
	Storage        StorageConfig   `yaml:"storage"`
	Redis          RedisConfig     `yaml:"redis"`
	CORS           CORSConfig      `yaml:"cors"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	BootstrapAdmin AdminConfig     `yaml:"bootstrap_admin"`
	Mail           MailConfig      `yaml:"mail"`
}

// HTTPConfig сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig параметры подписи токенов и шифрования паролей.
// Секреты читаются один раз при старте и дальше не меняются.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	CryptoSecret   string        `yaml:"crypto_secret" env:"CRYPTO_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"1h"`
	SecureCookies  bool          `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"true"`
}

// OTPConfig параметры одноразовых кодов.
type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl" env:"OTP_TTL" env-default:"5m"`
	Digits      int           `yaml:"digits" env:"OTP_DIGITS" env-default:"4"`
	MaxAttempts int           `yaml:"max_attempts" env:"OTP_MAX_ATTEMPTS" env-default:"5"`
}

// StorageConfig настройки хранилищ.
// SQLite используется всегда, Mongo только для учетных данных при driver=mongo.
type StorageConfig struct {
	SQLitePath        string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"rentspace.db"`
	CredentialsDriver string `yaml:"credentials_driver" env:"CREDENTIALS_DRIVER" env-default:"sqlite"`
	MongoURL          string `yaml:"mongo_url" env:"MONGO_URL"`
}

// RedisConfig настройки Redis для защиты OTP. Пустой адрес включает in-memory реализацию.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// CORSConfig разрешенные источники для браузерных клиентов.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

// RateLimitConfig лимит запросов с одного IP.
type RateLimitConfig struct {
	Requests int           `yaml:"requests" env:"RATE_LIMIT_REQUESTS" env-default:"100"`
	Window   time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
}

// AdminConfig администратор, создаваемый при первом запуске.
type AdminConfig struct {
	Name     string `yaml:"name" env:"ADMIN_NAME" env-default:"admin"`
	Email    string `yaml:"email" env:"ADMIN_EMAIL"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Режимы TLS для SMTP
const (
	MailTLSStartTLS = "starttls"
	MailTLSNone     = "none"
)

// MailConfig настройки SMTP. Пустой host включает запись писем в лог.
type MailConfig struct {
	Host     string        `yaml:"host" env:"MAIL_HOST"`
	Port     int           `yaml:"port" env:"MAIL_PORT" env-default:"587"`
	Username string        `yaml:"username" env:"MAIL_USERNAME"`
	Password string        `yaml:"password" env:"MAIL_PASSWORD"`
	From     string        `yaml:"from" env:"MAIL_FROM"`
	FromName string        `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"RentSpace"`
	TLS      string        `yaml:"tls" env:"MAIL_TLS" env-default:"starttls"`
	Timeout  time.Duration `yaml:"timeout" env:"MAIL_TIMEOUT" env-default:"10s"`
}

// Enabled сообщает, настроена ли отправка через SMTP.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// Validate проверяет согласованность значений, которые cleanenv проверить не может.
func (c *Config) Validate() error {
	switch c.Storage.CredentialsDriver {
	case DriverSQLite:
	case DriverMongo:
		if c.Storage.MongoURL == "" {
			return fmt.Errorf("storage.mongo_url is required for credentials_driver %q", DriverMongo)
		}
	default:
		return fmt.Errorf("unknown credentials driver %q", c.Storage.CredentialsDriver)
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive")
	}
	if c.OTP.Digits <= 0 {
		return fmt.Errorf("otp.digits must be positive")
	}
	if c.Mail.Enabled() {
		if c.Mail.From == "" {
			return fmt.Errorf("mail.from is required when mail.host is set")
		}
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			return fmt.Errorf("mail.port %d is out of range", c.Mail.Port)
		}
		if c.Mail.TLS != MailTLSStartTLS && c.Mail.TLS != MailTLSNone {
			return fmt.Errorf("unknown mail.tls mode %q", c.Mail.TLS)
		}
	}

	return nil
}

// MustLoad обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./config.yaml; 4) ENV.
// После чтения файла поверх значений из YAML накладываются переменные окружения.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}

		return &cfg, nil
	}

	if path != "" {
		return tryRead(path)
	}

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		return tryRead("config.yaml")
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide -config, CONFIG_PATH, config.yaml or env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
