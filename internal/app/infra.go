package app

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/utpal16raj09/flfe/internal/config"
	"github.com/utpal16raj09/flfe/internal/db"
	"github.com/utpal16raj09/flfe/internal/email"
	"github.com/utpal16raj09/flfe/internal/logger"
	"github.com/utpal16raj09/flfe/internal/redis"
)

type Infra struct {
	DB     *sqlx.DB
	Redis  *redis.Client
	Sender email.Sender
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	sqlDB, err := sqlx.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	sender, err := setupSender(cfg)
	if err != nil {
		return nil, err
	}

	return &Infra{
		DB:     sqlDB,
		Redis:  redisClient,
		Sender: sender,
	}, nil
}

func setupSender(cfg config.Config) (email.Sender, error) {
	if cfg.EmailDriver == "postmark" {
		return email.NewPostmarkSender(
			cfg.PostmarkServerToken,
			cfg.PostmarkAccountToken,
			cfg.EmailFrom,
			cfg.ProductName,
		)
	}
	return email.NewLogSender(cfg.ProductName), nil
}
