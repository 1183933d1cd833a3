package fetcher

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"readme_updater/internal/logger"
)

// Task - одна независимая операция сбора данных.
// Ошибка задачи с Fatal прерывает весь сбор, остальные ошибки только записываются.
type Task struct {
	Name  string
	Fatal bool
	Run   func(ctx context.Context) error
}

// Failure - ошибка нефатальной задачи.
type Failure struct {
	Name string
	Err  error
}

// Collect запускает задачи параллельно и дожидается всех.
// Возвращает нефатальные ошибки (по имени задачи) и первую фатальную.
func Collect(ctx context.Context, log *logger.Entry, tasks []Task) ([]Failure, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		mu       sync.Mutex
		failures []Failure
	)
	for _, task := range tasks {
		task := task
		g.Go(func() error {
			tlog := log.WithField("task", task.Name)
			tlog.Debug("Starting task")
			start := time.Now()

			err := task.Run(gctx)
			if err == nil {
				tlog.WithField("elapsed", time.Since(start).String()).Debug("Task finished")
				return nil
			}
			if task.Fatal {
				tlog.Errorf("Task failed: %v", err)
				return err
			}
			tlog.Warnf("Task failed, section degraded: %v", err)
			mu.Lock()
			failures = append(failures, Failure{Name: task.Name, Err: err})
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	sort.Slice(failures, func(i, j int) bool { return failures[i].Name < failures[j].Name })
	return failures, err
}
