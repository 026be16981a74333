// Package dbopen opens the server database and waits for it to become
// reachable. The database regularly starts a few seconds after the server
// under docker-compose, so the initial ping retries with backoff instead of
// failing the process.
package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	"github.com/skomarov/boardkeeper/internal/logging"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxAttempts    = 6
)

// Open opens a pgx-backed *sql.DB for the DSN and pings it until it
// answers, retrying with capped exponential backoff.
func Open(ctx context.Context, dsn string, log logging.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	backoff := retry.WithMaxRetries(maxAttempts, retry.NewExponential(initialBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			log.Warn(ctx, "database not reachable yet, retrying", "error", err.Error())
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
