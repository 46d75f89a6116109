package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub-be/internal/cache"
	"eventhub-be/internal/config"
	"eventhub-be/internal/credentials"
	"eventhub-be/internal/database"
	"eventhub-be/internal/jwt"
	"eventhub-be/internal/logger"
	"eventhub-be/internal/repository"
	"eventhub-be/internal/router"
	"eventhub-be/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	loc, _ := cfg.Location()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	users, events, closeStore, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer closeStore()

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, continuing without cache", zap.Error(err))
			cacheClient = nil
		} else {
			log.Info("connected to redis cache")
			defer cacheClient.Close()
		}
	}

	// Initialize JWT service
	jwtService, err := jwt.NewJWTService(cfg.JWTSecret)
	if err != nil {
		log.Fatal("failed to initialize token service", zap.Error(err))
	}

	// Initialize services
	authService := service.NewAuthService(users, credentials.NewBcryptHasher(cfg.BcryptCost), jwtService)
	eventService := service.NewEventService(events, users, cacheClient, service.EventServiceConfig{
		Location: loc,
		CacheTTL: cfg.CacheTTL(),
	})

	engine := router.New(router.Deps{
		Logger:       log,
		AuthService:  authService,
		EventService: eventService,
		FrontendURL:  cfg.FrontendURL,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           cors(engine),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

// openStores connects the backend named by DATABASE_URL, prepares its
// schema and returns both repositories with a function releasing the
// connection.
func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.UserRepository, repository.EventRepository, func(), error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, nil, nil, err
	}

	switch driver {
	case config.DriverMongo:
		db, err := database.NewMongoConnection(ctx, cfg.DatabaseURL, cfg.DatabaseName, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return repository.NewMongoUserRepository(db), repository.NewMongoEventRepository(db), closeFn, nil

	default:
		db, err := database.NewConnection(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() { db.Close() }
		// Run database migrations
		if err := database.RunMigrations(db, log); err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return repository.NewUserRepository(db), repository.NewEventRepository(db), closeFn, nil
	}
}
