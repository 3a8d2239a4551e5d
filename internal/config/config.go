package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション設定を表す
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mail     MailConfig
	App      AppConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MailConfig はメール通知の設定
// APIKey が空の場合、通知はログ出力のみでスキップされる
type MailConfig struct {
	APIKey   string
	From     string
	Endpoint string
}

// AppConfig はアプリケーション全体の設定
type AppConfig struct {
	Env     string
	BaseURL string
}

// Load は環境変数から設定を読み込む
// DATABASE_URL / REDIS_URL（Railway等のPaaS形式）があれば個別変数より優先する
func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "kanjikun"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Mail: MailConfig{
			APIKey:   getEnv("MAIL_API_KEY", ""),
			From:     getEnv("MAIL_FROM", ""),
			Endpoint: getEnv("MAIL_ENDPOINT", "https://api.resend.com/emails"),
		},
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			BaseURL: getEnv("APP_BASE_URL", "https://kanjikun.com"),
		},
	}

	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		if db, ok := parseDatabaseURL(raw); ok {
			cfg.Database = db
		}
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		if rd, ok := parseRedisURL(raw); ok {
			cfg.Redis = rd
		}
	}

	return cfg
}

func parseDatabaseURL(raw string) (DatabaseConfig, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return DatabaseConfig{}, false
	}

	password, _ := u.User.Password()
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	// URL接続はマネージドDB想定のため既定で require
	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "require"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, true
}

func parseRedisURL(raw string) (RedisConfig, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RedisConfig{}, false
	}

	password, _ := u.User.Password()
	port := u.Port()
	if port == "" {
		port = "6379"
	}

	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if i, err := strconv.Atoi(p); err == nil {
			db = i
		}
	}

	return RedisConfig{
		Host:     u.Hostname(),
		Port:     port,
		Password: password,
		DB:       db,
	}, true
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// Enabled はメール送信が構成済みかを返す
func (c *MailConfig) Enabled() bool {
	return c.APIKey != "" && c.From != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
