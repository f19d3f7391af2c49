package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Blockchain BlockchainConfig
	Approval   ApprovalConfig
	SMTP       SMTPConfig
	Jobs       JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration. An empty URL disables Redis; the
// server then falls back to an in-process relayer lock and skips idempotency.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BlockchainConfig holds the single EVM chain and relayer settings.
type BlockchainConfig struct {
	RPCURL            string
	ChainID           int64
	FactoryAddress    string
	RelayerPrivateKey string
	ConfirmTimeout    time.Duration
	ReceiptPoll       time.Duration
	NonceLockTTL      time.Duration
}

// ApprovalConfig holds the emergency approval settings.
type ApprovalConfig struct {
	TokenTTL time.Duration
	AppURL   string
}

// SMTPConfig holds outbound mail settings. An empty Host logs links instead
// of sending them.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	RolloverEnabled bool
	RolloverCheck   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "blackwallet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Blockchain: BlockchainConfig{
			RPCURL:            getEnv("RPC_URL", "https://sepolia.base.org"),
			ChainID:           int64(getEnvAsInt("CHAIN_ID", 84532)),
			FactoryAddress:    getEnv("FACTORY_ADDRESS", ""),
			RelayerPrivateKey: getEnv("RELAYER_PRIVATE_KEY", ""),
			ConfirmTimeout:    getEnvAsDuration("CHAIN_CONFIRM_TIMEOUT", 2*time.Minute),
			ReceiptPoll:       getEnvAsDuration("CHAIN_RECEIPT_POLL", 2*time.Second),
			NonceLockTTL:      getEnvAsDuration("RELAYER_LOCK_TTL", 30*time.Second),
		},
		Approval: ApprovalConfig{
			TokenTTL: getEnvAsDuration("APPROVAL_TOKEN_TTL", 24*time.Hour),
			AppURL:   getEnv("APP_URL", "http://localhost:8080"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "no-reply@blackwallet.local"),
			Timeout:  getEnvAsDuration("SMTP_TIMEOUT", 15*time.Second),
		},
		Jobs: JobsConfig{
			RolloverEnabled: getEnvAsBool("DAILY_ROLLOVER_ENABLED", true),
			RolloverCheck:   getEnvAsDuration("DAILY_ROLLOVER_CHECK_INTERVAL", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
