// Ininicializing common application configuration
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TRAINHUB"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Store    StoreConfig    `mapstructure:"store"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Email    EmailConfig    `mapstructure:"email"`
	Mail     MailConfig     `mapstructure:"mail"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Env         string        `mapstructure:"environment"`
	Mode        string        `mapstructure:"mode" validate:"oneof=debug release test"`
	// Public origin used to build links in emails, e.g. https://trainhub.example.com
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"required"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// StoreConfig selects the realtime document store backend.
type StoreConfig struct {
	Driver    string `mapstructure:"driver" validate:"oneof=redis memory"`
	KeyPrefix string `mapstructure:"key_prefix" validate:"required"`
}

type AuthConfig struct {
	JWTSecret         string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	ActionCodeTTL     time.Duration `mapstructure:"action_code_ttl"`
	MaxFailedLogins   int           `mapstructure:"max_failed_logins"`
	FailedLoginWindow time.Duration `mapstructure:"failed_login_window"`
	CookieName        string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
	// Unverified accounts older than this are deleted, 0 disables the cleanup
	UnverifiedAccountTTL time.Duration `mapstructure:"unverified_account_ttl"`
	CleanupInterval      time.Duration `mapstructure:"cleanup_interval"`
}

// EmailConfig is the SMTP account used for outgoing mail.
type EmailConfig struct {
	From     string `mapstructure:"from" validate:"required,email"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Enabled  bool   `mapstructure:"enabled"`
}

type MailConfig struct {
	RelayURL     string        `mapstructure:"relay_url" validate:"required,url"`
	RelayTimeout time.Duration `mapstructure:"relay_timeout"`
	// Shared secret between the relay client and endpoint. Generated at startup when empty.
	RelaySecret string `mapstructure:"relay_secret"`
	Subject     string `mapstructure:"subject"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

func LoadConfig() (*viper.Viper, error) {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	setDefaults(viperInstance)

	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	// config.yaml is optional when everything comes from the environment
	if err := viperInstance.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

// GetServerAddress возвращает полный адрес сервера
func (c *Config) GetServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trainhub")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.dbname", "trainhub")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	v.SetDefault("store.driver", "redis")
	v.SetDefault("store.key_prefix", "trainhub")

	v.SetDefault("auth.session_ttl", 30*24*time.Hour)
	v.SetDefault("auth.action_code_ttl", 24*time.Hour)
	v.SetDefault("auth.max_failed_logins", 5)
	v.SetDefault("auth.failed_login_window", 15*time.Minute)
	v.SetDefault("auth.cookie_name", "trainhub_session")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.unverified_account_ttl", 7*24*time.Hour)
	v.SetDefault("auth.cleanup_interval", time.Hour)

	// Email defaults
	v.SetDefault("email.from", "noreply@trainhub.local")
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.enabled", false)

	v.SetDefault("mail.relay_url", "http://localhost:8080/api/send-verification-email")
	v.SetDefault("mail.relay_timeout", 10*time.Second)
	v.SetDefault("mail.subject", "Verify your email address for TrainHub")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
