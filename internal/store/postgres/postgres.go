// Package postgres provides a PostgreSQL-backed KV backend for the config
// store. Each logical record is one row in a single config table.
package postgres

import (
	"context"
	"database/sql"
	"errors"
)

type KV struct {
	db *sql.DB
}

func New(db *sql.DB) *KV {
	return &KV{db: db}
}

// EnsureSchema creates the config table if it does not exist.
func (s *KV) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, queryCreateTable)
	return err
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, queryGet, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, querySet, key, value)
	return err
}
