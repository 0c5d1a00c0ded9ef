package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sistemaos/webapp/internal/api"
	"github.com/sistemaos/webapp/internal/config"
	"github.com/sistemaos/webapp/internal/prefs"
	"github.com/sistemaos/webapp/internal/server"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	store, err := prefs.Open(cfg.PrefsDSN)
	if err != nil {
		log.Fatalf("Failed to open preference store: %v", err)
	}

	client := api.New(cfg.APIBaseURL)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(client, store),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s (env=%s, api=%s)", cfg.Port, cfg.Env, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped gracefully")
}
