package db

import (
	"context"
	"strings"
	"time"
)

// Статусы запуска.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// DSNOff отключает журнал запусков.
const DSNOff = "off"

// Run - запись о запуске обновления документа.
type Run struct {
	ID            string
	StartedAt     time.Time
	FinishedAt    time.Time
	Status        string
	Degraded      []string
	CommitMessage string
	CommitHash    string
	Error         string
}

// Ledger хранит историю запусков.
type Ledger interface {
	RecordRun(ctx context.Context, run Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Open выбирает хранилище по dsn: postgres:// и postgresql:// открывают PostgreSQL,
// "off" или пустая строка отключают журнал (nil, nil), остальное - путь к файлу SQLite.
func Open(ctx context.Context, dsn string) (Ledger, error) {
	switch {
	case dsn == "" || dsn == DSNOff:
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		database, err := NewDB(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return database, nil
	default:
		store, err := NewSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

func joinSections(sections []string) string {
	return strings.Join(sections, ",")
}

func splitSections(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
