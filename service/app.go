package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"quill/app/cache"
	"quill/app/config"
	"quill/app/repositories"
	"quill/app/routes"
	"quill/app/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// timeoutBody is written by the timeout handler when a request runs past
// the configured limit.
const timeoutBody = `{"error":"ServiceUnavailableError","message":"Request timed out"}`

// newStore picks S3 when a bucket is configured and the local disk
// otherwise.
func newStore(cfg config.Config) storage.Store {
	if cfg.S3.Bucket != "" {
		client := storage.NewS3Client(storage.S3Options{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicURL:       cfg.S3.PublicURL,
		})
		return storage.NewS3Store(client, cfg.S3.Bucket, cfg.S3.PublicURL)
	}
	return storage.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
}

// NewServer builds the HTTP server for the blog API on top of db.
func NewServer(cfg config.Config, db *badger.DB, log *zap.Logger) (*http.Server, error) {
	c, err := cache.New(cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := routes.Setup(routes.Deps{
		Config:   &cfg,
		DB:       db,
		Log:      log,
		Cache:    c,
		Store:    newStore(cfg),
		Registry: reg,
	})

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           http.TimeoutHandler(router, cfg.RequestTimeout, timeoutBody),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Serve runs srv on ln until ctx is cancelled, then shuts it down
// gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// RunAppServer opens the database and serves the API until ctx is done.
func RunAppServer(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	db, err := repositories.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	srv, err := NewServer(cfg, db, log)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return Serve(ctx, srv, ln, log)
}
