package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rsawyer/homewarden/internal/backup"
	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/database"
	"github.com/rsawyer/homewarden/internal/logging"
	"github.com/rsawyer/homewarden/internal/push"
	"github.com/rsawyer/homewarden/internal/server"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(env("HOMED_LOG_LEVEL", "info"))

	port := env("HOMED_PORT", "8080")
	dbPath := env("HOMED_DB_PATH", "homewarden.db")

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	backupCfg := backup.Config{
		DBPath: dbPath,
		S3: backup.S3Config{
			Endpoint:  os.Getenv("HOMED_S3_ENDPOINT"),
			Bucket:    os.Getenv("HOMED_S3_BUCKET"),
			Region:    env("HOMED_S3_REGION", "auto"),
			AccessKey: os.Getenv("HOMED_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("HOMED_S3_SECRET_KEY"),
		},
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("HOMED_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("HOMED_VAPID_PRIVATE_KEY"),
	}

	srv := server.New(db, clock.System(), backupCfg, pushCfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	// Periodic housekeeping: expired sessions and stale rate-limit entries
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session sweep", "error", err)
				} else if n > 0 {
					logger.Info("session sweep", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("homewarden listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
