package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/mkamel/groupshare/docs"
	"github.com/mkamel/groupshare/internal/config"
	"github.com/mkamel/groupshare/internal/database"
	"github.com/mkamel/groupshare/internal/group"
	"github.com/mkamel/groupshare/internal/media"
	"github.com/mkamel/groupshare/internal/user"
	"github.com/mkamel/groupshare/pkg/auth"
	"github.com/mkamel/groupshare/pkg/logger"
	mw "github.com/mkamel/groupshare/pkg/middleware"
	"github.com/mkamel/groupshare/pkg/response"
)

// @title        GroupShare API
// @version      1.0
// @description  Group membership and media sharing service.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.Production()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.L.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.L.Info("connected to database")

	if err := database.Migrate(context.Background(), db); err != nil {
		logger.L.Fatal("failed to run migrations", zap.Error(err))
	}

	// Token verification (identity itself is owned by the external auth system)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiration)

	// Media file storage
	store, err := media.NewDiskStore(cfg.UploadDir)
	if err != nil {
		logger.L.Fatal("failed to initialize upload storage", zap.Error(err))
	}

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo)
	groupHandler := group.NewHandler(groupService)

	// Media feature
	mediaRepo := media.NewRepository(db)
	mediaService := media.NewService(mediaRepo, store)
	mediaHandler := media.NewHandler(mediaService, cfg.MaxUploadBytes)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(issuer))

		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/media", mediaHandler.Routes())
	})

	// Start server
	logger.L.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.L.Fatal("server failed to start", zap.Error(err))
	}
}
