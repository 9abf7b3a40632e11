package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coah80/tunepull/internal/config"
	"github.com/coah80/tunepull/internal/hub"
	"github.com/coah80/tunepull/internal/middleware"
	"github.com/coah80/tunepull/internal/server"
	"github.com/coah80/tunepull/internal/util"
)

func main() {
	godotenv.Load()
	config.Load()

	server.PrintBanner()
	util.CheckDependencies()
	util.ClearTempDir()
	util.StartCleanupInterval()
	middleware.StartRateLimitCleanup()

	h := hub.New()
	h.StartEvictionSweep(config.SubscriptionExpiry)

	srv := server.New(h)

	go func() {
		log.Printf("Listening on port %s", config.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	fmt.Println("Server stopped.")
}
