package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
	"github.com/fsdevblog/groph-rewards/pkg/uow"
)

// InventoryManager единственный, кто меняет rewards.stock. Работает только внутри транзакции вызывающего.
type InventoryManager struct{}

func NewInventoryManager() *InventoryManager {
	return new(InventoryManager)
}

// Lock блокирует строку награды до конца транзакции.
func (i *InventoryManager) Lock(ctx context.Context, tx uow.TX, rewardID int64) (*domain.Reward, error) {
	repo, repoErr := uow.GetAs[RewardRepository](tx, uow.RepositoryName(repoargs.RewardRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	reward, err := repo.GetForUpdate(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("lock reward: %w", err)
	}
	return reward, nil
}

// DecrementStock уменьшает остаток на qty. Возвращает domain.ErrOutOfStock если остатка не хватает.
// Возвращаемая награда содержит новый остаток.
func (i *InventoryManager) DecrementStock(
	ctx context.Context,
	tx uow.TX,
	rewardID int64,
	qty int64,
) (*domain.Reward, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("decrement stock: %w", domain.ErrInvalidAmount)
	}
	return i.apply(ctx, tx, rewardID, -qty)
}

// IncrementStock увеличивает остаток на qty, верхней границы нет.
func (i *InventoryManager) IncrementStock(
	ctx context.Context,
	tx uow.TX,
	rewardID int64,
	qty int64,
) (*domain.Reward, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("increment stock: %w", domain.ErrInvalidAmount)
	}
	return i.apply(ctx, tx, rewardID, qty)
}

func (i *InventoryManager) apply(ctx context.Context, tx uow.TX, rewardID int64, delta int64) (*domain.Reward, error) {
	repo, repoErr := uow.GetAs[RewardRepository](tx, uow.RepositoryName(repoargs.RewardRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}

	reward, err := repo.GetForUpdate(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("lock reward: %w", err)
	}

	newStock := reward.Stock + delta
	if newStock < 0 {
		return nil, fmt.Errorf("reward %d has %d in stock: %w", reward.ID, reward.Stock, domain.ErrOutOfStock)
	}
	if updErr := repo.UpdateStock(ctx, reward.ID, newStock); updErr != nil {
		return nil, fmt.Errorf("update reward stock: %w", updErr)
	}
	reward.Stock = newStock
	return reward, nil
}
