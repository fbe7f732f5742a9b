package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"genebank/internal/adapters/httpapi"
	"genebank/internal/auth"
	"genebank/internal/config"
)

func newServeCmd(configPath *string) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalogue HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath, watch)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch-config", false, "stop the server when the configuration file changes")
	return cmd
}

func runServe(ctx context.Context, configPath string, watch bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	var signer *auth.Signer
	if a.cfg.Auth.Secret != "" {
		if signer, err = auth.NewSigner(a.cfg.Auth.Secret, a.cfg.Auth.Issuer); err != nil {
			return err
		}
	} else {
		a.logger.Warn("no auth secret configured; only anonymous reads are possible")
	}

	e := httpapi.New(httpapi.Options{
		Service:  a.svc,
		Signer:   signer,
		Logger:   a.logger,
		Metrics:  a.metrics,
		LogLevel: a.cfg.Log.Level,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if watch && configPath != "" {
		watched, cancel, err := config.UntilModified(ctx, configPath)
		if err != nil {
			return err
		}
		defer cancel()
		ctx = watched
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("addr", a.cfg.Server.Addr), zap.String("storage", a.cfg.Storage.Driver))
		errc <- e.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down", zap.NamedError("cause", context.Cause(ctx)))
	}
	graceful, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(graceful); err != nil {
		return err
	}
	return nil
}
