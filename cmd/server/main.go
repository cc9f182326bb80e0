package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"

	checkoutapp "github.com/clvmartin/boutique/internal/checkout/app"
	checkouthttp "github.com/clvmartin/boutique/internal/checkout/http"
	"github.com/clvmartin/boutique/internal/gateway/stripe"
	orderapp "github.com/clvmartin/boutique/internal/order/app"
	orderpg "github.com/clvmartin/boutique/internal/order/infra/postgres"
	"github.com/clvmartin/boutique/internal/order/reconcile"

	"github.com/clvmartin/boutique/pkg/config"
	"github.com/clvmartin/boutique/pkg/logger"
	"github.com/clvmartin/boutique/pkg/postgres"
	"github.com/clvmartin/boutique/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "server",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db := mustDB(cfg, log)
	defer db.Close()

	gateway := stripe.NewClient(cfg.StripeAPIBase, cfg.StripeSecretKey, nil)

	// Checkout proxy
	checkoutSvc := checkoutapp.NewService(gateway, cfg.Currency)
	handler := checkouthttp.NewHandler(checkoutSvc, log)

	// Order settlement
	orderRepo := orderpg.NewOrderRepo(db)
	orderSvc := orderapp.NewService(orderRepo)
	reconciler := reconcile.New(orderSvc, gateway, log, time.Minute)

	router := mux.NewRouter()
	handler.Register(router)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("reconciler starting")
		reconciler.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustDB(cfg config.Config, log *slog.Logger) *sql.DB {
	db, err := postgres.Open(postgres.Config{
		Host: cfg.PostgresHost,
		Port: cfg.PostgresPort,
		User: cfg.PostgresUser,
		Pass: cfg.PostgresPass,
		DB:   cfg.PostgresDB,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}
