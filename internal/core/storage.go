package core

import (
	"context"
	"fmt"

	"genebank/internal/config"
	"genebank/internal/infra/persistence/memory"
	"genebank/internal/infra/persistence/mongostore"
	"genebank/internal/infra/persistence/postgres"
	"genebank/internal/infra/persistence/sqlite"
	"genebank/internal/infra/persistence/sqlserver"
	"genebank/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory    StorageDriver = "memory"    // in-memory only (tests / ephemeral)
	StorageSQLite    StorageDriver = "sqlite"    // embedded sqlite file
	StoragePostgres  StorageDriver = "postgres"  // PostgreSQL server
	StorageSQLServer StorageDriver = "sqlserver" // Microsoft SQL Server
	StorageMongo     StorageDriver = "mongo"     // MongoDB
)

// CloseFunc releases a store's resources.
type CloseFunc func(context.Context) error

func noClose(context.Context) error { return nil }

// OpenPersistentStore opens the backend selected by cfg. The returned
// CloseFunc must be called on shutdown.
func OpenPersistentStore(ctx context.Context, cfg config.Storage) (domain.PersistentStore, CloseFunc, error) {
	driver := StorageDriver(cfg.Driver)
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), noClose, nil
	case StorageSQLite:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case StoragePostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case StorageSQLServer:
		store, err := sqlserver.NewStore(ctx, cfg.SQLServerDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case StorageMongo:
		store, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
}
