package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GregMSThompson/moneylog/internal/errs"
)

const createSnapshotTable = `
CREATE TABLE IF NOT EXISTS snapshot (
	device TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (device, key)
);`

type sqliteKV struct {
	db     *sql.DB
	device string
}

// OpenSQLite opens (or creates) the snapshot database at path. Rows are
// scoped by device so several installs can share one file.
func OpenSQLite(ctx context.Context, path, device string) (*sqliteKV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.NewDatabaseError("open", err)
	}
	// one writer; the driver serialises anyway
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, createSnapshotTable); err != nil {
		db.Close()
		return nil, errs.NewDatabaseError("migrate", err)
	}
	return &sqliteKV{db: db, device: device}, nil
}

func (s *sqliteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshot WHERE device = ? AND key = ?`, s.device, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errs.NewDatabaseError("get "+key, err)
	}
	return value, true, nil
}

func (s *sqliteKV) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (device, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(device, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.device, key, value, time.Now().UTC())
	if err != nil {
		return errs.NewDatabaseError("set "+key, err)
	}
	return nil
}

func (s *sqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshot WHERE device = ? AND key = ?`, s.device, key); err != nil {
		return errs.NewDatabaseError("delete "+key, err)
	}
	return nil
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}
