package worker

import (
	"context"
	"fmt"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	tasksByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskboard_tasks",
			Help: "Number of local tasks by status",
		},
		[]string{"status"},
	)

	overdueTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskboard_overdue_tasks",
			Help: "Number of open local tasks whose deadline has passed",
		},
	)
)

type TaskLister interface {
	ListTasks(ctx context.Context, f task.Filter) ([]*task.Task, error)
}

type Stats struct {
	Todo    int
	Done    int
	Overdue int
}

// OverdueWorker периодически пересчитывает задачи по статусам и просроченные.
// Статусы задач не меняются, просрочка только видна в метриках и логах.
type OverdueWorker struct {
	tasks    TaskLister
	interval time.Duration
	now      func() time.Time
}

func NewOverdueWorker(tasks TaskLister, interval time.Duration) *OverdueWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &OverdueWorker{
		tasks:    tasks,
		interval: interval,
		now:      time.Now,
	}
}

func (w *OverdueWorker) WithClock(now func() time.Time) *OverdueWorker {
	w.now = now
	return w
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.check(ctx)
	for {
		select {
		case <-ticker.C:
			w.check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) check(ctx context.Context) {
	start := time.Now()

	stats, err := w.Check(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка получения задач", zap.Error(err))
		return
	}

	tasksByStatus.WithLabelValues(string(task.StatusTodo)).Set(float64(stats.Todo))
	tasksByStatus.WithLabelValues(string(task.StatusDone)).Set(float64(stats.Done))
	overdueTasks.Set(float64(stats.Overdue))

	logger.Info("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("todo", stats.Todo),
		zap.Int("done", stats.Done),
		zap.Int("overdue", stats.Overdue))
}

// Check считает задачи. Просроченная - открытая задача с дедлайном раньше сегодняшнего дня.
func (w *OverdueWorker) Check(ctx context.Context) (Stats, error) {
	tasks, err := w.tasks.ListTasks(ctx, task.Filter{})
	if err != nil {
		return Stats{}, fmt.Errorf("получение задач: %w", err)
	}

	today := w.now().Format(task.DeadlineLayout)

	var stats Stats
	for _, t := range tasks {
		if t.Status == task.StatusDone {
			stats.Done++
			continue
		}
		stats.Todo++
		// даты в формате YYYY-MM-DD сравниваются как строки
		if t.Deadline != nil && *t.Deadline < today {
			stats.Overdue++
		}
	}
	return stats, nil
}
