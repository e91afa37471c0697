package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"doclinks/doclinks/app"
	"doclinks/doclinks/config"
	"doclinks/doclinks/routes"
	"doclinks/doclinks/utils/logging"
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(logging.Options{Dir: cfg.LogDir, Level: cfg.LogLevel, Console: true}); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	a, err := app.New(cfg)
	if err != nil {
		logging.ErrorLogger.Error("startup error", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           routes.NewRouter(cfg, a.Documents),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	_ = a.Close(shutdownCtx)
	logging.AppLogger.Info("server shutdown complete")
}
