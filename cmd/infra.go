package cmd

import (
	"context"
	"fmt"
	"time"

	"storefront/config"
	"storefront/infrastructure/messaging"
	"storefront/infrastructure/messaging/kafka"
	"storefront/infrastructure/persistence/mysql"
	"storefront/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenMySQL connects, pings and, in development, migrates the schema
func OpenMySQL(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	db, err := mysql.FromAppConfig(cfg.Database).Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if err := mysql.Ping(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	logger.Info("Connected to MySQL successfully",
		zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))

	if cfg.IsDevelopment() {
		if err := mysql.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to auto migrate: %w", err)
		}
	}
	return db, nil
}

// CloseMySQL releases the pool
func CloseMySQL(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// OpenRedis connects and pings
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	logger.Info("Connected to Redis successfully", zap.String("addr", cfg.Addr))
	return client, nil
}

// NewPublisher Kafka when brokers are configured, otherwise the log.
// The returned close func is never nil.
func NewPublisher(cfg config.KafkaConfig) (messaging.Publisher, func() error) {
	if len(cfg.Brokers) == 0 {
		logger.Info("No Kafka brokers configured; outbox events go to the log")
		return &messaging.LoggingPublisher{}, func() error { return nil }
	}
	publisher := kafka.NewPublisher(kafka.NewWriter(cfg.Brokers, cfg.Topic))
	logger.Info("Publishing outbox events to Kafka",
		zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return publisher, publisher.Close
}

// NewOutboxWorker worker over store using the configured publisher
func NewOutboxWorker(cfg *config.Config, store messaging.Store) (*messaging.Worker, func() error, error) {
	publisher, closePublisher := NewPublisher(cfg.Kafka)
	worker, err := messaging.NewWorker(store, publisher,
		cfg.Worker.PollInterval, cfg.Worker.BatchSize, cfg.Worker.MaxRetries)
	if err != nil {
		_ = closePublisher()
		return nil, nil, fmt.Errorf("failed to create outbox worker: %w", err)
	}
	return worker, closePublisher, nil
}
