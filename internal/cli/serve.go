package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/terraweave/terraweave/internal/api"
	"github.com/terraweave/terraweave/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string // listen address
	backend   string // cache backend: file, redis, mongo, none
	redisAddr string // redis host:port
	mongoURI  string // mongodb connection string
	tables    string // resolver tables TOML file
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		backend:   "file",
		redisAddr: "localhost:6379",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for editor frontends",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.backend, "cache", opts.backend, "cache backend: file (default), redis, mongo, none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "redis address (with --cache=redis)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "mongodb URI (with --cache=mongo)")
	cmd.Flags().StringVar(&opts.tables, "tables", "", "resolver tables TOML file")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	store, err := newServerCache(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	tables, err := loadTables(opts.tables)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.New(c.Logger, store, tables).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Infof("Serving on %s (cache: %s)", opts.addr, opts.backend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Logger.Info("Shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newServerCache builds the cache backend requested by --cache.
func newServerCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	switch opts.backend {
	case "none":
		return cache.NewNullCache(), nil
	case "file":
		return newCache(false), nil
	case "redis":
		c, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redisAddr})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.Instrument(c), nil
	case "mongo":
		c, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: opts.mongoURI})
		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w", err)
		}
		return cache.Instrument(c), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.backend)
	}
}
