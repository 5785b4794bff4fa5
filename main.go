package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventify/internal/auth"
	"eventify/internal/config"
	"eventify/internal/database"
	"eventify/internal/events"
	"eventify/internal/events/db"
	eventsredis "eventify/internal/events/redis"
	"eventify/internal/kafka"
	"eventify/internal/logger"
	"eventify/internal/server"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.Addr == "" {
		log.Warn("REDIS", "REDIS_ADDR not set, token revocation disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s (DB: %d)", cfg.Addr, cfg.DB))
	return client
}

func buildVerifier(ctx context.Context, cfg config.AuthConfig, log *logger.Logger) auth.Verifier {
	if cfg.OIDCIssuer != "" {
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Fatal("AUTH", fmt.Sprintf("OIDC setup failed: %v", err))
		}
		log.Info("AUTH", fmt.Sprintf("Verifying tokens against OIDC issuer %s", cfg.OIDCIssuer))
		return verifier
	}
	log.Info("AUTH", "Verifying HS256 tokens with JWT_SECRET")
	return auth.NewJWTVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)
}

// buildPublisher returns the configured lifecycle publisher and a cleanup func.
func buildPublisher(cfg *config.Config, rdb *redis.Client, log *logger.Logger) (events.Publisher, func()) {
	switch cfg.Events.Publisher {
	case "kafka":
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, log)
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, producer.Topics(), log); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		log.Info("KAFKA", "Kafka producer initialized successfully")
		return producer, func() {
			if err := producer.Close(); err != nil {
				log.Error("KAFKA", fmt.Sprintf("Failed to close producer: %v", err))
			}
		}
	case "redis":
		log.Info("REDIS", fmt.Sprintf("Publishing event notifications on channel %s", cfg.Redis.Channel))
		return eventsredis.NewPublisher(rdb, cfg.Redis.Channel, log), func() {}
	default:
		return events.NopPublisher{}, func() {}
	}
}

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()

	log := logger.NewLogger(logger.Options{
		Service: "eventify",
		Dir:     cfg.Log.Dir,
		Level:   logger.ParseLevel(cfg.Log.Level),
	})
	defer log.Close()

	log.Info("APP", "Starting Eventify service initialization")
	if envErr != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	ctx := context.Background()

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, bunDB, log); err != nil {
			log.Fatal("DATABASE", err.Error())
		}
	}

	rdb := connectRedis(ctx, cfg.Redis, log)
	var revocations auth.RevocationList
	if rdb != nil {
		defer rdb.Close()
		revocations = auth.NewRedisRevocationList(rdb)
	}

	publisher, closePublisher := buildPublisher(cfg, rdb, log)
	defer closePublisher()

	store := &db.DB{Bun: bunDB}
	eventService := events.NewEventService(store, publisher, log)
	eventService.DefaultPageSize = cfg.Events.DefaultPageSize
	eventService.MaxPageSize = cfg.Events.MaxPageSize

	log.Info("HTTP", "Setting up router and middleware")
	router := server.NewRouter(server.Deps{
		Service:        eventService,
		Store:          store,
		Verifier:       buildVerifier(ctx, cfg.Auth, log),
		Revocations:    revocations,
		Logger:         log,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PublicBaseURL:  cfg.Server.PublicBaseURL,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("🚀 Eventify running on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Eventify shutdown complete")
	}
}
