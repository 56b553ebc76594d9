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

type Configuration struct {
	Server       ServerConfig       `validate:"required"`
	Postgres     PostgresConfig     `validate:"required"`
	Redis        RedisConfig
	Auth         AuthConfig         `validate:"required"`
	Integrations IntegrationsConfig
	Tokens       TokensConfig
	Logging      LoggingConfig
}

type ServerConfig struct {
	Address        string   `validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	User     string
	Password string
	SSLMode  string `mapstructure:"sslmode"`
	SecretID string `mapstructure:"secret_id"`
}

// RedisConfig com Address vazio desliga o Redis (cache e pub/sub ficam em memória)
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type AuthConfig struct {
	Provider       string `validate:"oneof=local cognito"`
	RSAPrivatePath string `mapstructure:"rsa_private_path"`
	KID            string `mapstructure:"kid"`
	Issuer         string
	Audience       string
	CookieSecure   bool   `mapstructure:"cookie_secure"`
	CognitoRegion  string `mapstructure:"cognito_region"`
	CognitoPoolID  string `mapstructure:"cognito_pool_id"`
	CognitoClient  string `mapstructure:"cognito_client_id"`
}

type IntegrationsConfig struct {
	CNPJBaseURL      string        `mapstructure:"cnpj_base_url"`
	CNPJCacheTTL     time.Duration `mapstructure:"cnpj_cache_ttl"`
	WhatsAppURL      string        `mapstructure:"whatsapp_url"`
	WhatsAppToken    string        `mapstructure:"whatsapp_token"`
	WhatsAppRate     float64       `mapstructure:"whatsapp_rate"`
	ChatWebhookURL   string        `mapstructure:"chat_webhook_url"`
	AlertWebhookURL  string        `mapstructure:"alert_webhook_url"`
	ActivationSecret string        `mapstructure:"activation_secret"`
	Timeout          time.Duration
}

type TokensConfig struct {
	PlanDays int `mapstructure:"plan_days"`
	ChatCost int `mapstructure:"chat_cost"`
}

type LoggingConfig struct {
	Level string
}

// NewConfig lê config.yaml (opcional), .env (opcional) e variáveis CRM_*
func NewConfig() (*Configuration, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/api-crm")

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("erro ao ler config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate aplica as regras `validate` da struct
func Validate(cfg *Configuration) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config inválida: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// AutomaticEnv só enxerga chaves conhecidas, então tudo que pode vir do ambiente tem default
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.dbname", "crm")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.secret_id", "")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.provider", "local")
	v.SetDefault("auth.rsa_private_path", "")
	v.SetDefault("auth.kid", "")
	v.SetDefault("auth.issuer", "api-crm")
	v.SetDefault("auth.audience", "crm-web")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.cognito_region", "")
	v.SetDefault("auth.cognito_pool_id", "")
	v.SetDefault("auth.cognito_client_id", "")

	v.SetDefault("integrations.cnpj_base_url", "https://brasilapi.com.br/api/cnpj/v1")
	v.SetDefault("integrations.cnpj_cache_ttl", 24*time.Hour)
	v.SetDefault("integrations.whatsapp_url", "")
	v.SetDefault("integrations.whatsapp_token", "")
	v.SetDefault("integrations.whatsapp_rate", 5)
	v.SetDefault("integrations.chat_webhook_url", "")
	v.SetDefault("integrations.alert_webhook_url", "")
	v.SetDefault("integrations.activation_secret", "")
	v.SetDefault("integrations.timeout", 30*time.Second)

	v.SetDefault("tokens.plan_days", 30)
	v.SetDefault("tokens.chat_cost", 1)

	v.SetDefault("logging.level", "info")
}
