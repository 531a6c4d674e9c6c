// Command api serves the waste platform REST API.
//
//	@title						Waste Platform API
//	@version					1.0
//	@description				Authentication, gamification stats and training modules for the municipal waste platform.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/greenloop/waste-platform/internal/api"
	"github.com/greenloop/waste-platform/internal/api/handler"
	"github.com/greenloop/waste-platform/internal/core/domain"
	"github.com/greenloop/waste-platform/internal/core/ports"
	"github.com/greenloop/waste-platform/internal/core/service"
	"github.com/greenloop/waste-platform/internal/infrastructure/db/memory"
	"github.com/greenloop/waste-platform/internal/infrastructure/db/mongo"
	"github.com/greenloop/waste-platform/internal/infrastructure/db/redis"
	"github.com/greenloop/waste-platform/internal/infrastructure/queue"
	"github.com/greenloop/waste-platform/internal/pkg/config"
	"github.com/greenloop/waste-platform/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type stores struct {
	users      ports.UserRepository
	modules    ports.ModuleRepository
	activities ports.ActivityRepository
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "waste-api",
	})

	ctx := context.Background()
	health := map[string]handler.Pinger{}

	// --- Storage ---
	var st stores
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		st = stores{
			users:      memory.NewUserRepository(),
			modules:    memory.NewModuleRepository(),
			activities: memory.NewActivityRepository(),
		}
	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Fatal().Err(err).Msg("cannot connect to MongoDB")
		}
		defer disconnectMongo(client, log)

		repos := mongo.NewRepositories(db)
		if err := repos.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("cannot create MongoDB indexes")
		}
		st = stores{users: repos.Users, modules: repos.Modules, activities: repos.Activities}
		health["mongodb"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")
	}

	// --- Module cache (optional) ---
	var cache ports.ModuleCache
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, module cache disabled")
	} else {
		defer closeRedis(rdb, log)
		cache = redis.NewModuleCache(rdb)
		health["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// --- Activity trail ---
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, st.activities, logger.Component("activity"))
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	// --- Services ---
	authService := service.NewAuthService(st.users, cfg.JWTSecret, cfg.JWTExpires.Std())
	userService := service.NewUserService(st.users, st.activities, dispatcher, logger.Component("users"))
	moduleService := service.NewModuleService(st.modules, cache, cfg.Redis.ModuleCacheTTL.Std(), logger.Component("modules"))

	if cfg.Bootstrap.Enabled() {
		bootstrapGovernment(ctx, authService, cfg.Bootstrap, log)
	}

	e := api.NewRouter(api.Deps{
		Auth:        authService,
		Users:       userService,
		Modules:     moduleService,
		Health:      health,
		Log:         logger.Component("http"),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			quit <- syscall.SIGTERM
		}
	}()

	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// bootstrapGovernment makes sure the configured government account exists.
// The account is never modified once present.
func bootstrapGovernment(ctx context.Context, auth *service.AuthService, b config.BootstrapConfig, log zerolog.Logger) {
	user, created, err := auth.EnsureAccount(ctx, ports.RegisterInput{
		Name:     b.Name,
		Email:    b.Email,
		Password: b.Password,
		Role:     string(domain.RoleGovernment),
	})
	if err != nil {
		log.Fatal().Err(err).Str("email", b.Email).Msg("cannot create bootstrap government account")
	}
	if !created {
		if user.Role != domain.RoleGovernment {
			log.Warn().Str("email", b.Email).Str("role", user.Role.String()).Msg("bootstrap email belongs to a non-government account")
		}
		return
	}
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("bootstrap government account created")
}

func disconnectMongo(client *mongodriver.Client, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}

func closeRedis(rdb *goredis.Client, log zerolog.Logger) {
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close failed")
	}
}
