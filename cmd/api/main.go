package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hallday/hallday-api/internal/config"
	"github.com/hallday/hallday-api/internal/domain/auth"
	"github.com/hallday/hallday-api/internal/domain/estimate"
	"github.com/hallday/hallday-api/internal/middleware"
	"github.com/hallday/hallday-api/internal/pkg/database"
	"github.com/hallday/hallday-api/internal/pkg/imaging"
	"github.com/hallday/hallday-api/internal/pkg/jwt"
	"github.com/hallday/hallday-api/internal/pkg/logger"
	pkgresponse "github.com/hallday/hallday-api/internal/pkg/response"
	"github.com/hallday/hallday-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Hallday API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Storage ----------
	var photoStorage storage.Storage
	if cfg.UseR2() {
		r2, err := storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
		photoStorage = r2
		log.Info().Str("bucket", cfg.R2BucketName).Msg("Using R2 storage")
	} else {
		local, err := storage.NewLocalStorage(cfg.LocalStoragePath, cfg.LocalStorageURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
		photoStorage = local
		log.Info().Str("path", cfg.LocalStoragePath).Msg("Using local storage")
	}

	processor := imaging.NewProcessor(imaging.DefaultConfig())
	photoUploader := storage.NewPhotoUploader(photoStorage, processor, cfg.MaxPhotoSizeBytes)

	// ---------- Repositories ----------
	adminRepo := auth.NewRepository(db)
	estimateRepo := estimate.NewRepository(db)

	// ---------- Services ----------
	sessionStore := auth.NewSessionStore(redisClient)
	authService := auth.NewService(adminRepo, jwtService, sessionStore)
	estimateService := estimate.NewService(estimateRepo, photoUploader, photoStorage)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService, cfg.IsProduction())
	estimateHandler := estimate.NewHandler(estimateService)

	authMiddleware := middleware.Auth(jwtService, sessionStore)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	// Serve locally stored photos in development
	if !cfg.UseR2() {
		r.Get("/media/*", storage.MediaHandler(photoStorage))
	}

	r.Route("/admin", func(r chi.Router) {
		auth.Routes(r, authHandler, authMiddleware)
		estimate.Routes(r, estimateHandler, authMiddleware)
	})

	// ---------- Server ----------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
