package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mgelashvili/ledger_service/configs"
	"github.com/mgelashvili/ledger_service/internal/handlers"
	"github.com/mgelashvili/ledger_service/internal/ledger"
	"github.com/mgelashvili/ledger_service/internal/logger"
	"github.com/mgelashvili/ledger_service/internal/routes"
	"github.com/mgelashvili/ledger_service/internal/seed"
	"github.com/mgelashvili/ledger_service/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	configs.LoadConfig()
	store.NewDB()
	store.DBMigrate()
	seed.Run()

	svc := ledger.NewService(store.DB, ledger.Config{
		MinAccountID:        configs.AppConfig.Ledger.MinAccountID,
		MaxAccountID:        configs.AppConfig.Ledger.MaxAccountID,
		ExtractLimit:        configs.AppConfig.Extract.Limit,
		EmptyExtractAsError: configs.AppConfig.Extract.EmptyAsError,
		StorageTimeout:      configs.AppConfig.DB.QueryTimeout,
	})

	sqlDB, err := store.DB.DB()
	if err != nil {
		logger.Log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	h := handlers.New(svc, sqlDB.PingContext)
	router := routes.NewRoutes(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configs.AppConfig.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Log.Error("db close failed", zap.Error(err))
	} else {
		logger.Log.Info("db closed")
	}

	logger.Log.Info("server stopped")
}
