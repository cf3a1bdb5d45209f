package config

import (
	"os"
	"strings"
	"time"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	App      AppConfig      `json:"app"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	CORS     CORSConfig     `json:"cors"`
	Uploads  UploadsConfig  `json:"uploads"`
	Telegram TelegramConfig `json:"telegram"`
}

type AppConfig struct {
	Env   string `json:"env"`
	Port  string `json:"port"`
	Debug bool   `json:"debug"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"ssl_mode"`
}

type RedisConfig struct {
	Host     string        `json:"host"`
	Port     string        `json:"port"`
	Password string        `json:"password"`
	DB       string        `json:"db"`
	Timeout  time.Duration `json:"timeout"`
}

type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

type UploadsConfig struct {
	// Каталог для фото квитанций
	ReceiptsDir string `json:"receipts_dir"`
	// Каталог для сформированных отчетов
	ReportsDir string `json:"reports_dir"`
}

type TelegramConfig struct {
	BotToken string `json:"bot_token"`
	ChatID   string `json:"chat_id"`
}

// Load читает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		App: AppConfig{
			Env:   getEnv("APP_ENV", "development"),
			Port:  getEnv("SERVER_PORT", "8080"),
			Debug: getEnv("APP_DEBUG", "false") == "true",
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "uchet_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnv("REDIS_DB", "0"),
			Timeout:  5 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Uploads: UploadsConfig{
			ReceiptsDir: getEnv("UPLOADS_RECEIPTS_DIR", "uploads/receipts"),
			ReportsDir:  getEnv("UPLOADS_REPORTS_DIR", "uploads/reports"),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
	}
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
