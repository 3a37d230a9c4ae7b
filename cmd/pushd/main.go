package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/azcoov/push/internal/backup"
	"github.com/azcoov/push/internal/config"
	"github.com/azcoov/push/internal/database"
	"github.com/azcoov/push/internal/dispatch"
	"github.com/azcoov/push/internal/logging"
	"github.com/azcoov/push/internal/server"
	"github.com/azcoov/push/internal/stripeapi"
	"github.com/azcoov/push/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("", "").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var pushTransport transport.Transport
	switch cfg.Push.Transport {
	case "apns":
		pushTransport, err = transport.NewAPNs(transport.APNsConfig{
			CertificatePath:     cfg.APNs.CertificatePath,
			CertificatePassword: cfg.APNs.CertificatePassword,
			Topic:               cfg.APNs.Topic,
			Production:          cfg.APNs.Production,
		})
		if err != nil {
			logger.Error("failed to load APNs certificate", "error", err)
			os.Exit(1)
		}
	case "webpush":
		pushTransport = transport.NewWebPush(transport.WebPushConfig{
			VAPIDPublicKey:  cfg.WebPush.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.WebPush.VAPIDPrivateKey,
			Subscriber:      cfg.WebPush.Subscriber,
		})
	}

	srv := server.New(db, server.Config{
		Transport: pushTransport,
		Lookup:    stripeapi.NewClient(),
		Dispatch: dispatch.Config{
			Workers: cfg.Push.Workers,
			Timeout: cfg.Push.Timeout,
		},
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	backupMgr := backup.NewManager(backup.Config{
		Endpoint:      cfg.Backup.Endpoint,
		Bucket:        cfg.Backup.Bucket,
		Region:        cfg.Backup.Region,
		AccessKey:     cfg.Backup.AccessKey,
		SecretKey:     cfg.Backup.SecretKey,
		Passphrase:    cfg.Backup.Passphrase,
		ScheduleHour:  cfg.Backup.ScheduleHour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, db, cfg.DBPath, logger.With("component", "backup"))
	if backupMgr != nil {
		backupMgr.Start(context.Background())
		defer backupMgr.Stop()
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("push relay starting", "addr", ":"+cfg.Port, "transport", cfg.Push.Transport)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
