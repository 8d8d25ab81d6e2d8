package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStore keeps every key as a row of the kv_store table (see
// internal/platform/db/migrations). Values are JSONB so list appends and
// counters can be done atomically in SQL.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store over an existing pool. The pool is owned
// by the caller; Close does not close it.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (p *postgresStore) Get(ctx context.Context, key string, dst interface{}) error {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("kv: get %s: %w", key, err)
	}
	return json.Unmarshal(data, dst)
}

func (p *postgresStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := encode(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (p *postgresStore) SetNX(ctx context.Context, key string, value interface{}) (bool, error) {
	data, err := encode(value)
	if err != nil {
		return false, fmt.Errorf("kv: encode %s: %w", key, err)
	}
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, $2::jsonb)
		ON CONFLICT (key) DO NOTHING`,
		key, string(data))
	if err != nil {
		return false, fmt.Errorf("kv: setnx %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *postgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

func (p *postgresStore) ScanPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT key, value::text FROM kv_store
		WHERE starts_with(key, $1)
		ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("kv: scan %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var data []byte
		if err := rows.Scan(&e.Key, &data); err != nil {
			return nil, fmt.Errorf("kv: scan row: %w", err)
		}
		e.Value = data
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kv: scan %s: %w", prefix, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (p *postgresStore) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, '1'::jsonb)
		ON CONFLICT (key) DO UPDATE
			SET value = to_jsonb((kv_store.value #>> '{}')::bigint + 1), updated_at = NOW()
		RETURNING (value #>> '{}')::bigint`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("kv: incr %s: %w", key, err)
	}
	return n, nil
}

func (p *postgresStore) AppendList(ctx context.Context, key, item string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO kv_store (key, value) VALUES ($1, jsonb_build_array($2::text))
		ON CONFLICT (key) DO UPDATE
			SET value = kv_store.value || EXCLUDED.value, updated_at = NOW()`,
		key, item)
	if err != nil {
		return fmt.Errorf("kv: append %s: %w", key, err)
	}
	return nil
}

func (p *postgresStore) ReadList(ctx context.Context, key string) ([]string, error) {
	var list []string
	err := p.Get(ctx, key, &list)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (p *postgresStore) Close() error { return nil }
