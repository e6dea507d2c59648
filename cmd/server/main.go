package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/bloodlink/internal/bootstrap"
	"anoa.com/bloodlink/internal/config"
	"anoa.com/bloodlink/internal/server"
	"anoa.com/bloodlink/pkg/database"
	"anoa.com/bloodlink/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if _, err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.L().Fatal("failed to connect database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}

	if cfg.IsDevelopment() {
		if err := bootstrap.SeedBloodBank(db, cfg.SeedBankEmail, cfg.SeedBankPassword); err != nil {
			logger.L().Fatal("failed to seed blood bank", zap.Error(err))
		}
	}

	redisClient, err := connectRedis(cfg.RedisURL)
	if err != nil {
		logger.L().Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Warn("REDIS_URL not set, cooldowns and token revocation are disabled")
	} else {
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		logger.L().Fatal("failed to build server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Run(":" + cfg.Port); err != nil {
			logger.L().Fatal("server exited with error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func connectRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
