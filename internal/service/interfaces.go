package service

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.User, error)
	UpdateBalance(ctx context.Context, id int64, balance int64) error
}

type RewardRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*domain.Reward, error)
	UpdateStock(ctx context.Context, id int64, stock int64) error
}

type RedemptionRepository interface {
	Create(ctx context.Context, args repoargs.CreateRedemption) (*domain.Redemption, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Redemption, error)
	GetForUpdateByUser(ctx context.Context, id int64, userID int64) (*domain.Redemption, error)
	GetForUpdateByCode(ctx context.Context, code string) (*domain.Redemption, error)
	CountActiveByUserAndReward(ctx context.Context, userID int64, rewardID int64) (int64, error)
	UpdateStatus(ctx context.Context, args repoargs.RedemptionStatusUpdate) error
	GetByUserID(ctx context.Context, userID int64) ([]domain.Redemption, error)
	GetExpiredPending(ctx context.Context, args repoargs.ExpiredPending) ([]domain.Redemption, error)
}

type LedgerRepository interface {
	Create(ctx context.Context, args repoargs.CreateLedgerEntry) (*domain.LedgerEntry, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.LedgerEntry, error)
}

// Notifier доставляет события пользователю. Вызывается только после коммита.
type Notifier interface {
	Notify(ctx context.Context, event domain.RedemptionEvent) error
}
