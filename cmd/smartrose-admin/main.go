package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"

	"github.com/25-26J-299/smartrose-admin/config"
	"github.com/25-26J-299/smartrose-admin/internal/adminapi"
	"github.com/25-26J-299/smartrose-admin/internal/api"
	"github.com/25-26J-299/smartrose-admin/internal/console"
	"github.com/25-26J-299/smartrose-admin/internal/db"
	"github.com/25-26J-299/smartrose-admin/internal/notification"
	"github.com/25-26J-299/smartrose-admin/internal/session"
	"github.com/25-26J-299/smartrose-admin/internal/store"
	"github.com/25-26J-299/smartrose-admin/internal/watcher"
)

func main() {
	logger := log.New(os.Stdout, "smartrose-admin ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded; admin API at %s", cfg.Backend.BaseURL)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else if cfg.Watcher.Enabled {
		logger.Println("VAPID keys are not configured; pending approval alerts are disabled")
		cfg.Watcher.Enabled = false
	}

	gormDB, err := db.Init(&cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	var handler *api.Handler
	sess := session.New(session.NewStoredTokens(appStore), func() {
		logger.Println("session ended; sign in again")
		if handler != nil {
			handler.Reset()
		}
	})
	client := adminapi.NewClient(&cfg.Backend, sess)
	cons := console.New(ctx, client, console.Options{
		SearchDebounce:     cfg.Console.SearchDebounce,
		SensorReadingLimit: cfg.Console.SensorReadingLimit,
		AuditLogLimit:      cfg.Console.AuditLogLimit,
	})

	if cfg.Watcher.Enabled {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		pool.Start(ctx)
		go watcher.NewService(&cfg.Watcher, client, sess, pool).Run(ctx)
	}

	handler = api.NewHandler(api.Dependencies{
		Auth:          client,
		Session:       sess,
		Console:       cons,
		Subscriptions: appStore,
		WebPush:       webpushOptions,
		Responses:     cache.New(time.Duration(cfg.Server.CacheTTLSeconds)*time.Second, 10*time.Minute),
		LoginRoute:    cfg.Backend.LoginRoute,
	})
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()
	handler.Reset()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
