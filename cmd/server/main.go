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

	"sloozify/internal/auth"
	"sloozify/internal/catalog"
	"sloozify/internal/config"
	"sloozify/internal/database"
	"sloozify/internal/sentry"
	"sloozify/internal/web"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "sloozify-server",
	Short: "Sloozify inventory backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			log.Fatalf("serve: %v", err)
		}
	},
}

var routecheckCmd = &cobra.Command{
	Use:   "routecheck",
	Short: "Resolve and print the selected database backend",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("load config: %v", err)
		}

		db := database.New(cfg.Database())
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := db.Initialize(ctx); err != nil {
			fmt.Println("backend: unavailable")
			return
		}
		fmt.Printf("backend: %s\n", db.Kind())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routecheckCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServe() error {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	environment := "production"
	if cfg.InsecureDev {
		environment = "development"
	}
	if err := sentry.Init(cfg.SentryDSN, environment); err != nil {
		log.Printf("Sentry init failed, continuing without it: %v", err)
	}
	defer sentry.Flush()

	// 2. Database routing. An unavailable database is not fatal: auth
	// degrades to the in-memory demo accounts.
	db := database.New(cfg.Database())
	defer db.Close()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Initialize(initCtx); err != nil {
		log.Printf("No database backend resolved; running on in-memory data only")
	} else {
		log.Printf("Database backend: %s", db.Kind())
	}
	cancelInit()

	// 3. Auth service and session codec
	authSvc := auth.NewService(db)
	codec, err := auth.NewTokenCodec(auth.TokenCodecConfig{
		IsSecure:          !cfg.InsecureDev,
		AllowInsecureKeys: cfg.InsecureDev,
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// 4. Catalog store
	store, err := catalog.NewSQLiteStore(cfg.CatalogDBPath)
	if err != nil {
		return fmt.Errorf("catalog store: %w", err)
	}
	defer store.Close()
	store.SeedData()

	// 5. HTTP server
	handler := web.NewHandler(authSvc, codec, store)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler.Router(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for interrupt or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErrors:
		sentry.CaptureError(err, "server error")
		log.Printf("Server error: %v, initiating shutdown...", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
