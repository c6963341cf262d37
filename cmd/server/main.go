package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"kukuri-chat/internal/config"
	"kukuri-chat/internal/db"
	"kukuri-chat/internal/message"
	appmiddleware "kukuri-chat/internal/middleware"
	"kukuri-chat/internal/token"
	"kukuri-chat/internal/upload"
	"kukuri-chat/internal/user"
	"kukuri-chat/internal/web"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if cfg.UsingFallbackSecret() {
		logger.Warn("JWT_SECRET is not set; using the insecure development fallback. Set JWT_SECRET before deploying.")
	}

	database, err := db.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("connect to database: %v", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}
	logger.Info("database ready")

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if _, err := cache.Ping(context.Background()).Result(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		logger.Infof("user directory cache enabled at %s", cfg.RedisAddr)
	}

	issuer := token.NewIssuer(cfg.JWTSecret, token.DefaultTTL)
	uploads := upload.NewFileStore(cfg.UploadDir)

	userRepo := user.NewRepository(database.Conn)
	userService := user.NewService(userRepo, cache, logger)
	userHandler := &user.Handler{
		Service:        userService,
		Tokens:         issuer,
		Uploads:        uploads,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	messageRepo := message.NewRepository(database.Conn)
	messageService := message.NewService(messageRepo)
	messageHandler := &message.Handler{
		Service:        messageService,
		Uploads:        uploads,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	auth := appmiddleware.NewAuth(issuer)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(appmiddleware.Recoverer(logger))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Server is running",
		})
	})
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.Handle)
		r.Get("/users", userHandler.List)
		r.Get("/messages/{userID}", messageHandler.Conversation)
		r.Post("/messages", messageHandler.Send)
		r.Post("/messages/image", messageHandler.SendImage)
	})

	// profile pictures and message images are served from the same
	// paths that user and message rows reference
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("server running on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
}
