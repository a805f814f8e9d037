package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

const userColumns = "id, balance, created_at, updated_at"

type UserRepository struct {
	conn uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{conn: conn}
}

// GetByID читает пользователя без блокировки. Возвращает domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "getting user by id %d", id)
	}
	return user, nil
}

// GetForUpdate читает пользователя и блокирует строку до конца транзакции.
func (u *UserRepository) GetForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	row := u.conn.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "locking user %d", id)
	}
	return user, nil
}

func (u *UserRepository) UpdateBalance(ctx context.Context, id int64, balance int64) error {
	tag, err := u.conn.Exec(ctx, "UPDATE users SET balance = $2, updated_at = now() WHERE id = $1", id, balance)
	if err != nil {
		return convertErr(err, "updating balance of user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating balance of user %d", id)
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Balance, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &user, nil
}
