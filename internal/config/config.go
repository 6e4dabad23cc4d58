// Пакет config — загрузка и валидация конфигурации Book Market
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Book Market.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Таймаут чтения HTTP-запроса
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-ответа
	HTTPWriteTimeout time.Duration
	// Таймаут простоя keep-alive соединения
	HTTPIdleTimeout time.Duration
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// Параметры подключения к PostgreSQL
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Базовый URL content-addressed хранилища (IPFS API)
	ContentStoreURL string
	// Базовый URL публичного gateway хранилища (для ссылок на скачивание)
	ContentGatewayURL string
	// Таймаут HTTP-запросов к хранилищу
	ContentStoreTimeout time.Duration
	// Максимальный размер загружаемого файла книги в байтах
	MaxContentSize int64

	// Базовый URL ledger gateway
	LedgerURL string
	// Таймаут HTTP-запросов к леджеру
	LedgerTimeout time.Duration
	// Интервал опроса статуса транзакции
	LedgerPollInterval time.Duration
	// Таймаут ожидания подтверждения транзакции
	ConfirmTimeout time.Duration

	// Путь к PEM-файлу RSA ключа подписи JWT (пусто — ключ генерируется при старте)
	JWTKeyFile string
	// Время жизни credential (JWT)
	TokenTTL time.Duration
	// Время жизни одноразового nonce
	NonceTTL time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration

	// Интервал фоновой сверки покупок с леджером
	ReconcileInterval time.Duration
	// Максимальный размер LRU-кэша каталога (записей)
	CacheSize int
	// TTL записи LRU-кэша каталога
	CacheTTL time.Duration

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (BM_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя владельца пода для метки name в topologymetrics (DEPHEALTH_NAME)
	DephealthName string

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// DatabaseDSN формирует DSN подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// BM_PORT — порт HTTP-сервера (по умолчанию 8000)
	cfg.Port, err = getEnvInt("BM_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("BM_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("BM_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// BM_HTTP_READ_TIMEOUT — таймаут чтения (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("BM_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_HTTP_READ_TIMEOUT: %w", err)
	}

	// BM_HTTP_WRITE_TIMEOUT — таймаут записи (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("BM_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// BM_HTTP_IDLE_TIMEOUT — таймаут простоя (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("BM_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// BM_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BM_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BM_LOG_LEVEL: %w", err)
	}

	// BM_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("BM_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BM_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- PostgreSQL ---

	// BM_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("BM_DB_HOST")
	if err != nil {
		return nil, err
	}

	// BM_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("BM_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("BM_DB_PORT: %w", err)
	}

	// BM_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("BM_DB_NAME")
	if err != nil {
		return nil, err
	}

	// BM_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("BM_DB_USER")
	if err != nil {
		return nil, err
	}

	// BM_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("BM_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// BM_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("BM_DB_SSL_MODE", "disable")

	// --- Content store ---

	// BM_CONTENT_STORE_URL — обязательный (например, http://ipfs:5001)
	cfg.ContentStoreURL, err = getEnvRequired("BM_CONTENT_STORE_URL")
	if err != nil {
		return nil, err
	}

	// BM_CONTENT_GATEWAY_URL — публичный gateway (по умолчанию store URL)
	cfg.ContentGatewayURL = getEnvDefault("BM_CONTENT_GATEWAY_URL", cfg.ContentStoreURL)

	// BM_CONTENT_STORE_TIMEOUT — таймаут запросов к хранилищу (по умолчанию 30s)
	cfg.ContentStoreTimeout, err = getEnvDuration("BM_CONTENT_STORE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_CONTENT_STORE_TIMEOUT: %w", err)
	}

	// BM_MAX_CONTENT_SIZE — максимальный размер файла (по умолчанию 100 MB)
	cfg.MaxContentSize, err = getEnvInt64("BM_MAX_CONTENT_SIZE", 104857600)
	if err != nil {
		return nil, fmt.Errorf("BM_MAX_CONTENT_SIZE: %w", err)
	}
	if cfg.MaxContentSize <= 0 {
		return nil, fmt.Errorf("BM_MAX_CONTENT_SIZE: значение должно быть положительным")
	}

	// --- Ledger ---

	// BM_LEDGER_URL — обязательный (например, http://ledger-gateway:8545)
	cfg.LedgerURL, err = getEnvRequired("BM_LEDGER_URL")
	if err != nil {
		return nil, err
	}

	// BM_LEDGER_TIMEOUT — таймаут запросов к леджеру (по умолчанию 10s)
	cfg.LedgerTimeout, err = getEnvDuration("BM_LEDGER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_LEDGER_TIMEOUT: %w", err)
	}

	// BM_LEDGER_POLL_INTERVAL — интервал опроса статуса (по умолчанию 2s)
	cfg.LedgerPollInterval, err = getEnvDuration("BM_LEDGER_POLL_INTERVAL", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_LEDGER_POLL_INTERVAL: %w", err)
	}

	// BM_CONFIRM_TIMEOUT — таймаут ожидания подтверждения (по умолчанию 30s)
	cfg.ConfirmTimeout, err = getEnvDuration("BM_CONFIRM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_CONFIRM_TIMEOUT: %w", err)
	}

	// --- Auth ---

	// BM_JWT_KEY_FILE — путь к PEM RSA ключа (опционально)
	cfg.JWTKeyFile = getEnvDefault("BM_JWT_KEY_FILE", "")

	// BM_TOKEN_TTL — время жизни credential (по умолчанию 30m)
	cfg.TokenTTL, err = getEnvDuration("BM_TOKEN_TTL", 30*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BM_TOKEN_TTL: %w", err)
	}

	// BM_NONCE_TTL — время жизни nonce (по умолчанию 5m)
	cfg.NonceTTL, err = getEnvDuration("BM_NONCE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BM_NONCE_TTL: %w", err)
	}

	// BM_JWT_LEEWAY — допустимое отклонение времени (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("BM_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_JWT_LEEWAY: %w", err)
	}

	// --- Reconcile и кэш ---

	// BM_RECONCILE_INTERVAL — интервал фоновой сверки (по умолчанию 1m)
	cfg.ReconcileInterval, err = getEnvDuration("BM_RECONCILE_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BM_RECONCILE_INTERVAL: %w", err)
	}

	// BM_CACHE_SIZE — размер LRU-кэша каталога (по умолчанию 1024)
	cfg.CacheSize, err = getEnvInt("BM_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("BM_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("BM_CACHE_SIZE: значение должно быть положительным")
	}

	// BM_CACHE_TTL — TTL записи кэша (по умолчанию 30s)
	cfg.CacheTTL, err = getEnvDuration("BM_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_CACHE_TTL: %w", err)
	}

	// --- topologymetrics ---

	// BM_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("BM_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// BM_DEPHEALTH_GROUP — имя группы в метриках (по умолчанию "bookmarket")
	cfg.DephealthGroup = getEnvDefault("BM_DEPHEALTH_GROUP", "bookmarket")

	// DEPHEALTH_NAME — имя владельца пода для метки name (без префикса модуля)
	cfg.DephealthName = getEnvDefault("DEPHEALTH_NAME", "")

	// BM_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("BM_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BM_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1m, 6h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("недопустимый уровень логирования: %q", level)
	}
}
