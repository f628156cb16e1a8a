package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	_ "storefront/docs"
	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
	api "storefront/internal/http"
	"storefront/internal/metrics"
	"storefront/internal/notify"
	"storefront/internal/platform/database"
	jwtpkg "storefront/internal/platform/jwt"
	"storefront/internal/platform/password"
	"storefront/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	metrics.Register()

	store, db, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer database.Close(db)

	notifier := notify.NewLogNotifier(logger)
	hasher := password.NewHasher(0)
	events := make(chan interaction.Event, 100)

	adminSvc := admin.NewService(store.Admins(), admin.Options{
		Hasher:     hasher,
		Notifier:   notifier,
		ConfirmTTL: cfg.EmailTokenTTL,
		Logger:     logger,
	})
	clienteSvc := customer.NewService(store.Clientes(), customer.Options{
		Hasher:        hasher,
		Notifier:      notifier,
		EmailTokenTTL: cfg.EmailTokenTTL,
		ResetCodeTTL:  cfg.ResetCodeTTL,
		Logger:        logger,
	})
	produtoSvc := product.NewService(store.Produtos())
	interacaoSvc := interaction.NewService(store.Interacoes(), interaction.Options{
		Products: produtoSvc,
		Events:   events,
		Logger:   logger,
	})

	var authRate rate.Limit
	if cfg.AuthPerMinute > 0 {
		authRate = rate.Every(time.Minute / time.Duration(cfg.AuthPerMinute))
	}

	router := api.NewRouter(api.Dependencies{
		Admins:      adminSvc,
		Clientes:    clienteSvc,
		Produtos:    produtoSvc,
		Interacoes:  interacaoSvc,
		Tokens:      jwtpkg.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		DB:          store,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		AuthRate:    authRate,
		AuthBurst:   cfg.AuthPerMinute,
		GlobalRPM:   cfg.GlobalPerMinute,
	})

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	go worker.NewStatsWorker(events, logger).Run(workerCtx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
