package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"genebank/internal/blob"
	"genebank/internal/config"
	"genebank/internal/core"
	"genebank/internal/logging"
	"genebank/internal/metrics"
	"genebank/internal/permission"
)

// app holds everything a command needs once the configuration is loaded.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	svc     *core.Service
	metrics *metrics.Recorder
	close   core.CloseFunc
}

func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	store, closeStore, err := core.OpenPersistentStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	blobs, err := blob.Open(ctx, blob.Config{
		Driver: cfg.Blob.Driver,
		FSRoot: cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          cfg.Blob.S3.Bucket,
			Region:          cfg.Blob.S3.Region,
			Endpoint:        cfg.Blob.S3.Endpoint,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
			PathStyle:       cfg.Blob.S3.PathStyle,
		},
	})
	if err != nil {
		_ = closeStore(ctx)
		return nil, fmt.Errorf("open %s blob store: %w", cfg.Blob.Driver, err)
	}
	rec := metrics.NewRecorder()
	svc := core.NewService(store,
		core.WithLogger(logging.NewAdapter(logger)),
		core.WithMetrics(rec),
		core.WithPolicy(permission.Policy{
			AdminGroup:           cfg.Permissions.AdminGroup,
			AccessionSetCreators: cfg.Permissions.AccessionSetCreators,
		}),
		core.WithArchive(blob.NewArchive(blobs)),
	)
	if err := svc.EnsureAdminGroup(ctx); err != nil {
		_ = closeStore(ctx)
		return nil, fmt.Errorf("ensure admin group: %w", err)
	}
	return &app{cfg: cfg, logger: logger, svc: svc, metrics: rec, close: closeStore}, nil
}

// Close releases the store and flushes the logger.
func (a *app) Close(ctx context.Context) error {
	err := a.close(ctx)
	_ = a.logger.Sync()
	return err
}

// operator is the actor the CLI acts as when no user is named.
func (a *app) operator() permission.Actor {
	return permission.Actor{Username: "genebank-cli", Groups: []string{a.svc.Policy().AdminGroupName()}, IsStaff: true}
}
