package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

const rewardColumns = "id, name, category::text, cost, stock, active, expiration_date, max_per_user, " +
	"created_at, updated_at"

type RewardRepository struct {
	conn uow.DBTX
}

func NewRewardRepository(conn uow.DBTX) *RewardRepository {
	return &RewardRepository{conn: conn}
}

// GetForUpdate читает награду и блокирует строку до конца транзакции.
func (r *RewardRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Reward, error) {
	row := r.conn.QueryRow(ctx, "SELECT "+rewardColumns+" FROM rewards WHERE id = $1 FOR UPDATE", id)
	reward, err := scanReward(row)
	if err != nil {
		return nil, convertErr(err, "locking reward %d", id)
	}
	return reward, nil
}

// UpdateStock записывает новый остаток. Отрицательный остаток отсекается CHECK ограничением таблицы.
func (r *RewardRepository) UpdateStock(ctx context.Context, id int64, stock int64) error {
	tag, err := r.conn.Exec(ctx, "UPDATE rewards SET stock = $2, updated_at = now() WHERE id = $1", id, stock)
	if err != nil {
		return convertErr(err, "updating stock of reward %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating stock of reward %d", id)
	}
	return nil
}

func scanReward(row rowScanner) (*domain.Reward, error) {
	var (
		reward   domain.Reward
		category string
	)
	if err := row.Scan(
		&reward.ID,
		&reward.Name,
		&category,
		&reward.Cost,
		&reward.Stock,
		&reward.Active,
		&reward.ExpirationDate,
		&reward.MaxPerUser,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	reward.Category = domain.RewardCategory(category)
	return &reward, nil
}
