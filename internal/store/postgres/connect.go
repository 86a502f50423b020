package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool, verifies connectivity and applies the schema,
// retrying with exponential backoff so a service coming up alongside a
// cold database does not die on the first refused connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	open := func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.New(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second

	return backoff.Retry(ctx, open,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(5),
	)
}
