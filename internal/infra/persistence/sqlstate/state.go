// Package sqlstate persists the in-memory catalogue state as JSON buckets in a
// single SQL table. Each SQL backend supplies its own Dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"genebank/internal/infra/persistence/memory"
)

// Dialect carries the backend-specific statements for the state table.
type Dialect struct {
	Name        string
	CreateTable string
	// Upsert receives the bucket name and the JSON payload as its two arguments.
	Upsert string
}

// Ensure creates the state table when it is missing.
func Ensure(ctx context.Context, db *sql.DB, d Dialect) error {
	if _, err := db.ExecContext(ctx, d.CreateTable); err != nil {
		return fmt.Errorf("%s: create state table: %w", d.Name, err)
	}
	return nil
}

// Load reads every stored bucket into a snapshot. Unknown buckets are ignored.
func Load(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		target := snapshot.Bucket(bucket)
		if target == nil {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return memory.Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

// Persist writes every bucket of the snapshot within one SQL transaction.
func Persist(ctx context.Context, db *sql.DB, d Dialect, snapshot memory.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range memory.Buckets() {
		data, err := json.Marshal(snapshot.Bucket(bucket))
		if err != nil {
			return fmt.Errorf("encode %s: %w", bucket, err)
		}
		if _, err := tx.ExecContext(ctx, d.Upsert, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Restore reloads the stored state into mem after a failed Persist so the
// in-memory state does not run ahead of the database. It returns cause, joined
// with the reload error when the database cannot be read either.
func Restore(ctx context.Context, db *sql.DB, mem *memory.Store, cause error) error {
	snapshot, err := Load(context.WithoutCancel(ctx), db)
	if err != nil {
		return errors.Join(cause, fmt.Errorf("reload state: %w", err))
	}
	mem.ImportState(snapshot)
	return cause
}
