package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool - часть pgxpool.Pool, которой пользуется Database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Database инкапсулирует пул соединений к PostgreSQL.
type Database struct {
	Pool Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    finished_at TIMESTAMP WITH TIME ZONE NOT NULL,
    status TEXT NOT NULL,
    degraded TEXT NOT NULL DEFAULT '',
    commit_message TEXT NOT NULL DEFAULT '',
    commit_hash TEXT NOT NULL DEFAULT '',
    error TEXT NOT NULL DEFAULT ''
)`

// NewDB создаёт пул соединений по connString и таблицу runs, если ее нет.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}
	db := &Database{Pool: pool}
	if err := db.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// Migrate создает схему журнала.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// Close закрывает пул соединений.
func (db *Database) Close() error {
	db.Pool.Close()
	return nil
}

// RecordRun сохраняет запуск. Повторная запись с тем же id обновляет ее.
func (db *Database) RecordRun(ctx context.Context, run Run) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO runs (id, started_at, finished_at, status, degraded, commit_message, commit_hash, error)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO UPDATE SET
            finished_at = EXCLUDED.finished_at,
            status = EXCLUDED.status,
            degraded = EXCLUDED.degraded,
            commit_message = EXCLUDED.commit_message,
            commit_hash = EXCLUDED.commit_hash,
            error = EXCLUDED.error
    `, run.ID, run.StartedAt, run.FinishedAt, run.Status, joinSections(run.Degraded),
		run.CommitMessage, run.CommitHash, run.Error)
	return err
}

// RecentRuns возвращает до limit последних запусков, от новых к старым.
func (db *Database) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, started_at, finished_at, status, degraded, commit_message, commit_hash, error
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			degraded string
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Status, &degraded,
			&run.CommitMessage, &run.CommitHash, &run.Error); err != nil {
			return nil, err
		}
		run.Degraded = splitSections(degraded)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
