package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the process-level configuration, loaded from the environment.
type Config struct {
	HTTPAddr         string
	APIKey           string
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string
	TelegramChatID   int64

	OpenAIAPIKey string
	OpenAIModel  string

	ScanCron     string
	WatchCron    string
	WatchSymbols []string

	LogLevel  string
	LogFormat string

	Scan ScanBudgets
}

// ScanBudgets bounds every funnel stage; zero universe size means no cap.
type ScanBudgets struct {
	MaxNews       int
	UniverseSize  int
	PrefilterSize int
	FinalSize     int
	IncludeETF    bool
}

// Load reads configuration from environment variables, applying the same
// defaults the scan entrypoints use.
func Load() *Config {
	cfg := &Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		APIKey:           os.Getenv("API_KEY"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ScanCron:         getEnv("SCAN_CRON", "0 30 13 * * MON-FRI"),
		WatchCron:        getEnv("WATCH_CRON", "0 0 15 * * MON-FRI"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		Scan: ScanBudgets{
			MaxNews:       getEnvInt("SCAN_MAX_NEWS", 180),
			UniverseSize:  getEnvInt("SCAN_UNIVERSE_SIZE", 0),
			PrefilterSize: getEnvInt("SCAN_PREFILTER_SIZE", 120),
			FinalSize:     getEnvInt("SCAN_FINAL_SIZE", 21),
			IncludeETF:    strings.EqualFold(os.Getenv("SCAN_INCLUDE_ETF"), "true"),
		},
	}

	if v := strings.TrimSpace(os.Getenv("WATCH_SYMBOLS")); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				cfg.WatchSymbols = append(cfg.WatchSymbols, s)
			}
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
