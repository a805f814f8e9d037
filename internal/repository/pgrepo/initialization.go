package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	_ "github.com/golang-migrate/migrate/v4/source/file"       //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxConnectAttempts uint = 30
	defaultRetryInterval           = 3 * time.Second
)

type ConnectArgs struct {
	DSN           string
	MigrationsDir string
	// MaxAttempts количество попыток подключения, 0 - значение по умолчанию.
	MaxAttempts   uint
	RetryInterval time.Duration
}

// Connect подключается к postgres с повторами
// и применяет миграции из args.MigrationsDir. Пустой MigrationsDir пропускает миграции.
func Connect(ctx context.Context, args ConnectArgs, l *logrus.Logger) (*pgxpool.Pool, error) {
	maxAttempts := args.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxConnectAttempts
	}
	retryInterval := args.RetryInterval
	if retryInterval == 0 {
		retryInterval = defaultRetryInterval
	}

	var attempts uint
	var conn *pgxpool.Pool
	for {
		var connErr error
		conn, connErr = newPostgresConnection(ctx, args.DSN)
		if connErr == nil {
			break
		}
		attempts++
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("init postgres connection after %d attempts: %w", maxAttempts, connErr)
		}
		l.WithError(connErr).
			WithField("CurrentAttempt", fmt.Sprintf("#%d / %d", attempts, maxAttempts)).
			Warnf("init postgres connection error, retrying in %.f seconds", retryInterval.Seconds())

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("init postgres connection: %w", ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	if args.MigrationsDir == "" {
		return conn, nil
	}
	if err := postgresMigrate(args.MigrationsDir, args.DSN); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func newPostgresConnection(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, confErr := pgxpool.ParseConfig(dsn)
	if confErr != nil {
		return nil, fmt.Errorf("parse postgres config: %s", confErr.Error())
	}
	pool, poolErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if poolErr != nil {
		return nil, fmt.Errorf("failed to create pool: %s", poolErr.Error())
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %s", pingErr.Error())
	}

	return pool, nil
}

func postgresMigrate(dir string, dsn string) error {
	m, mErr := migrate.New("file://"+dir, dsn)
	if mErr != nil {
		return fmt.Errorf("failed to create migrate instance: %w", mErr)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
