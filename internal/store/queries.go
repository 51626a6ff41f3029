// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store implements persistence for the blog on top of SQLite:
// connection setup, embedded goose migrations and the query layer.
package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps a DBTX with typed query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q that runs its statements inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// dbTime normalises a timestamp before it is written or compared.
// Timestamps are stored as UTC text, second precision, so that SQL
// comparisons on the text form order the same way as the instants do.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// nullInt64 converts an optional ID into a sql.NullInt64.
func nullInt64(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}
