package uow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryName string
type Repository any
type RepositoryFactory func(DBTX) Repository

type UnitOfWork struct {
	conn         *pgxpool.Pool
	repositories map[RepositoryName]RepositoryFactory
	lockTimeout  time.Duration
	txOptions    pgx.TxOptions
}

type Option func(*UnitOfWork)

// WithLockTimeout ограничивает ожидание блокировок строк внутри каждой транзакции (SET LOCAL lock_timeout).
// Нулевое значение оставляет настройку сервера.
func WithLockTimeout(d time.Duration) Option {
	return func(u *UnitOfWork) {
		u.lockTimeout = d
	}
}

func NewUnitOfWork(conn *pgxpool.Pool, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
		txOptions:    pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register регистрирует репозиторий у себя в мапе. Если репозиторий уже зарегистрирован, возвращает
// ошибку ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет функцию fn внутри транзакции. Любая ошибка fn (или паника) приводит к откату транзакции,
// коммит выполняется только при успешном завершении fn.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, TX) error) (err error) {
	tx, txErr := u.conn.BeginTx(ctx, u.txOptions)
	if txErr != nil {
		return fmt.Errorf("%w: %s", ErrBeginTx, txErr.Error())
	}
	defer func() {
		// rollback после commit вернет pgx.ErrTxClosed, это нормально.
		if rollbackErr := tx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil &&
			!errors.Is(rollbackErr, pgx.ErrTxClosed) {
			if err == nil {
				err = rollbackErr
			} else {
				err = errors.Join(err, rollbackErr)
			}
		}
	}()

	if u.lockTimeout > 0 {
		// SET не принимает плейсхолдеры, значение формируем сами из time.Duration.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", u.lockTimeout.Milliseconds())
		if _, execErr := tx.Exec(ctx, stmt); execErr != nil {
			return fmt.Errorf("set lock timeout: %w", execErr)
		}
	}

	if transErr := fn(ctx, NewTransaction(tx, u.repositories)); transErr != nil {
		return transErr
	}
	err = tx.Commit(ctx)
	return
}

// GetRepository возвращает репозиторий вне транзакции или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if repoFactory, ok := u.repositories[name]; ok {
		return repoFactory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий по имени name и приводит его к типу T. Возвращает ошибки
// ErrRepositoryNotRegistered и ErrInvalidRepositoryType.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)

	if !ok {
		return res, ErrInvalidRepositoryType
	}

	return r, nil
}
