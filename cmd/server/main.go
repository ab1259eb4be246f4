// eduShare server entry point. Wires configuration, logging, the notes
// database, the snapshot exporter, and the HTTP stack.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kuitang/edushare/internal/api"
	"github.com/kuitang/edushare/internal/blob"
	"github.com/kuitang/edushare/internal/config"
	"github.com/kuitang/edushare/internal/db"
	"github.com/kuitang/edushare/internal/notes"
	"github.com/kuitang/edushare/internal/obs"
	"github.com/kuitang/edushare/internal/ratelimit"
	"github.com/kuitang/edushare/internal/s3client"
)

const shutdownTimeout = 10 * time.Second

func main() {
	noS3, addr := config.ParseFlags()

	obs.Init()
	logger := obs.Pkg("main")

	cfg, err := config.LoadConfig(noS3, addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	cfg.PrintStartupSummary()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	notesDB, err := db.Open(cfg.DatabasePath, cfg.DatabaseKey)
	if err != nil {
		return fmt.Errorf("open notes database: %w", err)
	}
	defer notesDB.Close()

	snapshot, err := buildSnapshotPort(cfg)
	if err != nil {
		return fmt.Errorf("build snapshot port: %w", err)
	}

	handler := api.NewHandler(notesDB, api.WithSnapshot(snapshot))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	rateLimiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer rateLimiter.Stop()

	var root http.Handler = mux
	root = ratelimit.Middleware(rateLimiter)(root)
	root = api.WithCORS(root)
	root = obs.AccessLogMiddleware("http", root)
	root = obs.RequestContextMiddleware(root)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// buildSnapshotPort picks the snapshot backend: a local JSON file with
// --no-s3, otherwise one object in the configured S3 bucket.
func buildSnapshotPort(cfg *config.Config) (notes.Port, error) {
	if cfg.NoS3 {
		return blob.NewFileStore(cfg.SnapshotPath), nil
	}

	client, err := s3client.New(context.Background(), s3client.Config{
		Endpoint:        cfg.AWSEndpointS3,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		BucketName:      cfg.AWSBucketName,
	})
	if err != nil {
		return nil, err
	}
	return blob.NewS3Store(client, cfg.SnapshotKey), nil
}
