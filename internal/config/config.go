// Пакет config — загрузка и валидация конфигурации сервиса записи
// опросов из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bigkaa/survey-recorder/internal/storage/ledger"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// MaxFileSizeMBLimit — верхняя граница SR_MAX_FILE_SIZE_MB (4 ГиБ).
const MaxFileSizeMBLimit = 4096

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Директория аудиофайлов записей
	RecordingsDir string
	// Директория дневного журнала загрузок
	LogsDir string
	// Директория WAL
	WALDir string
	// Максимальная длительность записи в секундах
	MaxRecordingDuration int
	// Максимальный размер файла в байтах
	MaxFileSize int64
	// Разрешённые CORS origins
	AllowedOrigins []string
	// Лимит запросов с одного IP за окно RateLimitWindow
	RateLimitMax int
	RateLimitWindow time.Duration
	// Сколько дней журнала просматривается при удалении записи
	LedgerLookbackDays int
	// Кэш чтения журнала: количество дней и TTL
	LedgerCacheSize int
	LedgerCacheTTL  time.Duration
	// Проверять сигнатуру содержимого загружаемого файла
	SniffContent bool
	// Cron-расписание сверки; пустое — отключена
	ReconcileSchedule string
	// Cron-расписание очистки WAL; пустое — отключена
	WALCleanSchedule string
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// MaxDurationMs возвращает предельную длительность записи в миллисекундах.
func (c *Config) MaxDurationMs() float64 {
	return float64(c.MaxRecordingDuration) * 1000
}

// TLSEnabled возвращает true, если заданы сертификат и ключ.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку с именем переменной.
func Load() (*Config, error) {
	cfg := &Config{}

	// SR_PORT — порт HTTP-сервера (по умолчанию 3001)
	port, err := getEnvInt("SR_PORT", 3001)
	if err != nil {
		return nil, fmt.Errorf("SR_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("SR_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	cfg.RecordingsDir = getEnvDefault("SR_RECORDINGS_DIR", "./recordings")
	cfg.LogsDir = getEnvDefault("SR_LOGS_DIR", "./logs")
	cfg.WALDir = getEnvDefault("SR_WAL_DIR", "./wal")

	// SR_MAX_RECORDING_DURATION — секунды (по умолчанию 30)
	cfg.MaxRecordingDuration, err = getEnvPositiveInt("SR_MAX_RECORDING_DURATION", 30)
	if err != nil {
		return nil, err
	}

	// SR_MAX_FILE_SIZE_MB — мегабайты (по умолчанию 10)
	maxSizeMB, err := getEnvPositiveInt("SR_MAX_FILE_SIZE_MB", 10)
	if err != nil {
		return nil, err
	}
	if maxSizeMB > MaxFileSizeMBLimit {
		return nil, fmt.Errorf("SR_MAX_FILE_SIZE_MB: значение не должно превышать %d, получено %d",
			MaxFileSizeMBLimit, maxSizeMB)
	}
	cfg.MaxFileSize = int64(maxSizeMB) << 20

	// SR_ALLOWED_ORIGINS — список через запятую (по умолчанию "*")
	cfg.AllowedOrigins = splitList(getEnvDefault("SR_ALLOWED_ORIGINS", "*"))
	if len(cfg.AllowedOrigins) == 0 {
		return nil, fmt.Errorf("SR_ALLOWED_ORIGINS: пустой список")
	}

	cfg.RateLimitMax, err = getEnvPositiveInt("SR_RATE_LIMIT_MAX", 100)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitWindow, err = getEnvPositiveDuration("SR_RATE_LIMIT_WINDOW", 15*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.LedgerLookbackDays, err = getEnvPositiveInt("SR_LEDGER_LOOKBACK_DAYS", ledger.DefaultLookbackDays)
	if err != nil {
		return nil, err
	}
	cfg.LedgerCacheSize, err = getEnvPositiveInt("SR_LEDGER_CACHE_SIZE", 32)
	if err != nil {
		return nil, err
	}
	cfg.LedgerCacheTTL, err = getEnvPositiveDuration("SR_LEDGER_CACHE_TTL", time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.SniffContent, err = getEnvBool("SR_SNIFF_CONTENT", true)
	if err != nil {
		return nil, fmt.Errorf("SR_SNIFF_CONTENT: %w", err)
	}

	// Пустое значение задаётся явно через "off"
	cfg.ReconcileSchedule = getSchedule("SR_RECONCILE_SCHEDULE", "@every 6h")
	cfg.WALCleanSchedule = getSchedule("SR_WAL_CLEAN_SCHEDULE", "@hourly")

	// SR_TLS_CERT / SR_TLS_KEY — задаются только парой
	cfg.TLSCert = getEnvDefault("SR_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("SR_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("SR_TLS_CERT, SR_TLS_KEY: должны быть заданы вместе")
	}

	// SR_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("SR_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("SR_LOG_LEVEL: %w", err)
	}

	// SR_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SR_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SR_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvPositiveDuration("SR_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout, err = getEnvPositiveDuration("SR_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout, err = getEnvPositiveDuration("SR_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, err
	}

	// SR_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 10s)
	cfg.ShutdownTimeout, err = getEnvPositiveDuration("SR_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
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

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvPositiveInt — как getEnvInt, но значение должно быть > 0.
// Ошибка уже содержит имя переменной.
func getEnvPositiveInt(key string, defaultVal int) (int, error) {
	n, err := getEnvInt(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: значение должно быть положительным, получено %d", key, n)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// getEnvPositiveDuration — как getEnvDuration, но значение должно быть > 0.
func getEnvPositiveDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	d, err := getEnvDuration(key, defaultVal)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: длительность должна быть положительной, получено %s", key, d)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getSchedule возвращает cron-расписание; "off" отключает задачу.
// Синтаксис проверяется при регистрации задачи в планировщике.
func getSchedule(key, defaultVal string) string {
	val := getEnvDefault(key, defaultVal)
	if strings.EqualFold(val, "off") {
		return ""
	}
	return val
}

// splitList разбирает список через запятую, пропуская пустые элементы.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
