package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode      = "23505"
	lockNotAvailableCode     = "55P03"
	deadlockDetectedCode     = "40P01"
	serializationFailureCode = "40001"
	queryCanceledCode        = "57014"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - Для ошибок отсутствия данных (pgx.ErrNoRows) возвращает ErrRecordNotFound из domain.
//   - Дубликаты ключей (uniqueViolationCode) возвращаются как ErrDuplicateKey из domain.
//   - Таймаут блокировки, дедлок, ошибка сериализации и отмена запроса по дедлайну контекста возвращаются
//     как ErrConflict из domain.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		errType = domain.ErrConflict
	case errors.As(err, &pgErr):
		switch {
		case isUniqueViolationErr(pgErr):
			errType = domain.ErrDuplicateKey
		case isConflictErr(pgErr):
			errType = domain.ErrConflict
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}

func isUniqueViolationErr(err *pgconn.PgError) bool {
	return err.Code == uniqueViolationCode
}

func isConflictErr(err *pgconn.PgError) bool {
	switch err.Code {
	case lockNotAvailableCode, deadlockDetectedCode, serializationFailureCode, queryCanceledCode:
		return true
	default:
		return false
	}
}
