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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// App bundles the dependencies the route handlers need.
type App struct {
	cfg      *Config
	store    postStore
	settings settingsStore
	sessions *SessionStore
	uploader *Uploader
}

func main() {
	godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, db, err := connectDB(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("connecting database: %v", err)
	}

	importCtx, cancelImport := context.WithTimeout(context.Background(), 30*time.Second)
	if err := importFromFilesystem(importCtx, db.Collection(postsCollection), "content"); err != nil {
		log.Printf("importing filesystem posts: %v", err)
	}
	cancelImport()

	app := &App{
		cfg:      cfg,
		store:    NewPostRepository(db),
		settings: NewSettingsRepository(db),
		sessions: NewSessionStore(cfg.SessionTTL),
		uploader: NewUploader("public/uploads"),
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      newRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[rawdog-blog] listening on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("running server: %v", err)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	log.Println("[rawdog-blog] shutting down")
	timeout, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(timeout); err != nil {
		log.Printf("shutting down server: %v", err)
	}
	if err := closeDB(client); err != nil {
		log.Printf("disconnecting database: %v", err)
	}
}
