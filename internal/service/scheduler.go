// scheduler.go — периодический запуск фоновых задач по cron-расписанию.
package service

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler — cron-планировщик сверки и очистки WAL.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler создаёт планировщик. Задачи, не успевшие завершиться
// к следующему срабатыванию, пропускают его.
func NewScheduler(logger *slog.Logger) *Scheduler {
	l := logger.With(slog.String("component", "scheduler"))
	cl := cronLogger{logger: l}

	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: l,
	}
}

// Add регистрирует задачу. Пустое расписание отключает задачу.
func (s *Scheduler) Add(name, schedule string, job func()) error {
	if schedule == "" {
		s.logger.Info("Задача отключена", slog.String("job", name))
		return nil
	}
	if _, err := s.cron.AddFunc(schedule, job); err != nil {
		return fmt.Errorf("некорректное расписание задачи %s %q: %w", name, schedule, err)
	}
	s.logger.Info("Задача запланирована",
		slog.String("job", name),
		slog.String("schedule", schedule),
	)
	return nil
}

// Start запускает планировщик в фоне.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Планировщик запущен", slog.Int("jobs", s.Len()))
}

// Stop останавливает планировщик и ждёт завершения выполняющихся задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Планировщик остановлен")
}

// Len возвращает количество зарегистрированных задач.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// cronLogger направляет сообщения cron в slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err.Error())...)
}
