package postgres

import (
	"context"

	"github.com/comuna-app/feed-service/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

func DB(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return pgxpool.New(ctx, cfg.DSN())
}
