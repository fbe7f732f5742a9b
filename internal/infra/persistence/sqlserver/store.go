// Package sqlserver provides a Microsoft SQL Server backed persistent store
// that snapshots the in-memory state into a single state table.
package sqlserver

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"genebank/internal/infra/persistence/memory"
	"genebank/internal/infra/persistence/sqlstate"
	"genebank/pkg/domain"

	_ "github.com/microsoft/go-mssqldb" // register the sqlserver driver
)

var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "sqlserver"
	defaultDSN    = "sqlserver://localhost:1433?database=genebank"
	pingTimeout   = 5 * time.Second
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

var dialect = sqlstate.Dialect{
	Name: "sqlserver",
	CreateTable: `IF OBJECT_ID(N'state', N'U') IS NULL
		CREATE TABLE state (
			bucket NVARCHAR(64) NOT NULL PRIMARY KEY,
			payload VARBINARY(MAX) NOT NULL
		)`,
	Upsert: `MERGE state AS t
		USING (SELECT @p1 AS bucket, @p2 AS payload) AS s
		ON t.bucket = s.bucket
		WHEN MATCHED THEN UPDATE SET payload = s.payload
		WHEN NOT MATCHED THEN INSERT (bucket, payload) VALUES (s.bucket, s.payload);`,
}

// Store persists state to SQL Server while reusing the in-memory implementation for transactions.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore connects to SQL Server, ensures the state table and hydrates the
// in-memory store from it.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("error opening SQL database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to SQL database (ping failed): %w", err)
	}
	if err := sqlstate.Ensure(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	snapshot, err := sqlstate.Load(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

// RunInTransaction applies fn and snapshots the committed state to SQL Server.
// When the snapshot fails the stored state is reloaded and the error returned.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.Store.RunInTransaction(ctx, fn)
	if err != nil {
		return res, err
	}
	if err := sqlstate.Persist(ctx, s.db, dialect, s.ExportState()); err != nil {
		return domain.Result{}, sqlstate.Restore(ctx, s.db, s.Store, err)
	}
	return res, nil
}

// DB exposes the underlying sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// OverrideSQLOpen swaps the sql.Open implementation used by NewStore and
// returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	prev := sqlOpen
	sqlOpen = fn
	openMu.Unlock()
	return func() {
		openMu.Lock()
		sqlOpen = prev
		openMu.Unlock()
	}
}
