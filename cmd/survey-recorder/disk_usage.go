// disk_usage.go — получение информации об ёмкости диска.
// Платформозависимый код для Unix-подобных систем.
package main

import (
	"fmt"
	"log/slog"
	"syscall"
)

// lowDiskThreshold — свободное место, ниже которого при старте пишется WARN.
const lowDiskThreshold = 512 << 20

// getDiskUsage возвращает информацию о дисковом пространстве в директории.
// Возвращает total, used, available в байтах.
func getDiskUsage(path string) (total, used, available int64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, 0, fmt.Errorf("ошибка statfs %s: %w", path, err)
	}

	total = int64(stat.Blocks) * int64(stat.Bsize)
	available = int64(stat.Bavail) * int64(stat.Bsize)
	used = total - available

	return total, used, available, nil
}

// logDiskUsage пишет в лог ёмкость диска директории записей.
func logDiskUsage(logger *slog.Logger, dir string) {
	total, used, available, err := getDiskUsage(dir)
	if err != nil {
		logger.Warn("Не удалось получить ёмкость диска", slog.String("error", err.Error()))
		return
	}

	attrs := []any{
		slog.String("dir", dir),
		slog.Int64("total_bytes", total),
		slog.Int64("used_bytes", used),
		slog.Int64("available_bytes", available),
	}
	if available < lowDiskThreshold {
		logger.Warn("Мало свободного места для записей", attrs...)
		return
	}
	logger.Info("Ёмкость диска записей", attrs...)
}
