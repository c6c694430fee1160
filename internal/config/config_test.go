package config

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// allKeys — все переменные окружения сервиса.
var allKeys = []string{
	"SR_PORT", "SR_RECORDINGS_DIR", "SR_LOGS_DIR", "SR_WAL_DIR",
	"SR_MAX_RECORDING_DURATION", "SR_MAX_FILE_SIZE_MB", "SR_ALLOWED_ORIGINS",
	"SR_RATE_LIMIT_MAX", "SR_RATE_LIMIT_WINDOW",
	"SR_LEDGER_LOOKBACK_DAYS", "SR_LEDGER_CACHE_SIZE", "SR_LEDGER_CACHE_TTL",
	"SR_SNIFF_CONTENT", "SR_RECONCILE_SCHEDULE", "SR_WAL_CLEAN_SCHEDULE",
	"SR_TLS_CERT", "SR_TLS_KEY", "SR_LOG_LEVEL", "SR_LOG_FORMAT",
	"SR_HTTP_READ_TIMEOUT", "SR_HTTP_WRITE_TIMEOUT", "SR_HTTP_IDLE_TIMEOUT",
	"SR_SHUTDOWN_TIMEOUT",
}

// clearAllSREnvVars очищает все переменные SR_* на время теста.
// Пустое значение равносильно отсутствию переменной.
func clearAllSREnvVars(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

// setEnvVars устанавливает переменные окружения на время теста.
func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearAllSREnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 3001 {
		t.Errorf("Port: ожидалось 3001, получено %d", cfg.Port)
	}
	if cfg.RecordingsDir != "./recordings" || cfg.LogsDir != "./logs" || cfg.WALDir != "./wal" {
		t.Errorf("директории: %q %q %q", cfg.RecordingsDir, cfg.LogsDir, cfg.WALDir)
	}
	if cfg.MaxRecordingDuration != 30 || cfg.MaxDurationMs() != 30000 {
		t.Errorf("MaxRecordingDuration: ожидалось 30, получено %d", cfg.MaxRecordingDuration)
	}
	if cfg.MaxFileSize != 10<<20 {
		t.Errorf("MaxFileSize: ожидалось %d, получено %d", 10<<20, cfg.MaxFileSize)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitMax != 100 || cfg.RateLimitWindow != 15*time.Minute {
		t.Errorf("RateLimit: %d / %v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.LedgerLookbackDays != 7 {
		t.Errorf("LedgerLookbackDays: ожидалось 7, получено %d", cfg.LedgerLookbackDays)
	}
	if cfg.LedgerCacheSize != 32 || cfg.LedgerCacheTTL != time.Minute {
		t.Errorf("LedgerCache: %d / %v", cfg.LedgerCacheSize, cfg.LedgerCacheTTL)
	}
	if !cfg.SniffContent {
		t.Error("SniffContent: ожидалось true")
	}
	if cfg.ReconcileSchedule != "@every 6h" || cfg.WALCleanSchedule != "@hourly" {
		t.Errorf("расписания: %q %q", cfg.ReconcileSchedule, cfg.WALCleanSchedule)
	}
	if cfg.TLSEnabled() {
		t.Error("TLS не должен быть включён по умолчанию")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось INFO, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось 'json', получено %q", cfg.LogFormat)
	}
	if cfg.HTTPReadTimeout != 30*time.Second || cfg.HTTPWriteTimeout != 60*time.Second || cfg.HTTPIdleTimeout != 120*time.Second {
		t.Errorf("HTTP таймауты: %v %v %v", cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, cfg.HTTPIdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 10s, получено %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_AllCustomValues(t *testing.T) {
	clearAllSREnvVars(t)
	setEnvVars(t, map[string]string{
		"SR_PORT":                   "8080",
		"SR_RECORDINGS_DIR":         "/data/rec",
		"SR_LOGS_DIR":               "/data/logs",
		"SR_WAL_DIR":                "/data/wal",
		"SR_MAX_RECORDING_DURATION": "45",
		"SR_MAX_FILE_SIZE_MB":       "25",
		"SR_ALLOWED_ORIGINS":        "https://a.example.com, https://b.example.com,",
		"SR_RATE_LIMIT_MAX":         "10",
		"SR_RATE_LIMIT_WINDOW":      "1m",
		"SR_LEDGER_LOOKBACK_DAYS":   "30",
		"SR_LEDGER_CACHE_SIZE":      "4",
		"SR_LEDGER_CACHE_TTL":       "5s",
		"SR_SNIFF_CONTENT":          "false",
		"SR_RECONCILE_SCHEDULE":     "0 3 * * *",
		"SR_WAL_CLEAN_SCHEDULE":     "off",
		"SR_TLS_CERT":               "/tmp/tls.crt",
		"SR_TLS_KEY":                "/tmp/tls.key",
		"SR_LOG_LEVEL":              "debug",
		"SR_LOG_FORMAT":             "text",
		"SR_HTTP_READ_TIMEOUT":      "20s",
		"SR_HTTP_WRITE_TIMEOUT":     "45s",
		"SR_HTTP_IDLE_TIMEOUT":      "90s",
		"SR_SHUTDOWN_TIMEOUT":       "3s",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port: ожидалось 8080, получено %d", cfg.Port)
	}
	if cfg.RecordingsDir != "/data/rec" || cfg.LogsDir != "/data/logs" || cfg.WALDir != "/data/wal" {
		t.Errorf("директории: %q %q %q", cfg.RecordingsDir, cfg.LogsDir, cfg.WALDir)
	}
	if cfg.MaxDurationMs() != 45000 {
		t.Errorf("MaxDurationMs: ожидалось 45000, получено %v", cfg.MaxDurationMs())
	}
	if cfg.MaxFileSize != 25<<20 {
		t.Errorf("MaxFileSize: ожидалось %d, получено %d", 25<<20, cfg.MaxFileSize)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
	if cfg.RateLimitMax != 10 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("RateLimit: %d / %v", cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	if cfg.LedgerLookbackDays != 30 || cfg.LedgerCacheSize != 4 || cfg.LedgerCacheTTL != 5*time.Second {
		t.Errorf("Ledger: %d %d %v", cfg.LedgerLookbackDays, cfg.LedgerCacheSize, cfg.LedgerCacheTTL)
	}
	if cfg.SniffContent {
		t.Error("SniffContent: ожидалось false")
	}
	if cfg.ReconcileSchedule != "0 3 * * *" {
		t.Errorf("ReconcileSchedule: %q", cfg.ReconcileSchedule)
	}
	if cfg.WALCleanSchedule != "" {
		t.Errorf("WALCleanSchedule: \"off\" должно отключать задачу, получено %q", cfg.WALCleanSchedule)
	}
	if !cfg.TLSEnabled() {
		t.Error("TLS должен быть включён")
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "text" {
		t.Errorf("логирование: %v %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.HTTPReadTimeout != 20*time.Second || cfg.HTTPWriteTimeout != 45*time.Second || cfg.HTTPIdleTimeout != 90*time.Second {
		t.Errorf("HTTP таймауты: %v %v %v", cfg.HTTPReadTimeout, cfg.HTTPWriteTimeout, cfg.HTTPIdleTimeout)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 3s, получено %v", cfg.ShutdownTimeout)
	}
}

// TestLoad_InvalidValues проверяет, что ошибка называет переменную.
func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SR_PORT", "0"},
		{"SR_PORT", "70000"},
		{"SR_PORT", "abc"},
		{"SR_MAX_RECORDING_DURATION", "-5"},
		{"SR_MAX_FILE_SIZE_MB", "0"},
		{"SR_MAX_FILE_SIZE_MB", "ten"},
		{"SR_MAX_FILE_SIZE_MB", "4097"},
		{"SR_MAX_FILE_SIZE_MB", "9223372036854775807"},
		{"SR_RATE_LIMIT_MAX", "0"},
		{"SR_RATE_LIMIT_WINDOW", "15"},
		{"SR_LEDGER_LOOKBACK_DAYS", "0"},
		{"SR_LEDGER_CACHE_TTL", "-1s"},
		{"SR_SNIFF_CONTENT", "maybe"},
		{"SR_ALLOWED_ORIGINS", " , "},
		{"SR_LOG_LEVEL", "verbose"},
		{"SR_LOG_FORMAT", "xml"},
		{"SR_SHUTDOWN_TIMEOUT", "soon"},
		{"SR_TLS_CERT", "/tmp/tls.crt"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearAllSREnvVars(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("ожидалась ошибка")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("ошибка должна содержать %s: %v", tt.key, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := parseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: ошибка %v, ожидалась ошибка: %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("%q: ожидалось %v, получено %v", tt.input, tt.want, got)
		}
	}
}

func TestSetupLogger(t *testing.T) {
	for _, format := range []string{"json", "text"} {
		logger := SetupLogger(&Config{LogLevel: slog.LevelWarn, LogFormat: format})
		if logger == nil {
			t.Fatalf("%s: логгер не создан", format)
		}
		if logger.Enabled(context.Background(), slog.LevelInfo) {
			t.Errorf("%s: уровень INFO не должен быть включён", format)
		}
	}
}
