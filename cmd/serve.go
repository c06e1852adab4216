package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notewise/config"
	"notewise/config/database"
	"notewise/internal/cache"
	"notewise/internal/llm"
	"notewise/pkg/logger"
	"notewise/router"
	"notewise/socket"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !verbose {
			logger.Init(cfg.LogLevel)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}

		store, closeCache, err := openCache(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeCache()

		hub := socket.NewHub()
		go hub.Run(ctx)

		handler := router.Setup(router.Deps{
			Config:   cfg,
			DB:       db,
			Hub:      hub,
			Cache:    store,
			Enhancer: llm.NewOpenAIGenerator(cfg.Enhance()),
			Summary:  llm.NewOpenAIGenerator(cfg.Summary()),
		})

		srv := &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Long enough for a model call to finish.
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Sugar.Infof("Go Backend listening on :%s", cfg.ServerPort)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.Sugar.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// openCache uses Redis when REDIS_ADDR is set and an in-process cache
// otherwise.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Sugar.Warn("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemory(), func() {}, nil
	}
	r, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
