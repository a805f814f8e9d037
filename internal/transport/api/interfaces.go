package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/fsdevblog/groph-rewards/internal/service"
)

// RedemptionServicer интерфейс исключительно для моков.
type RedemptionServicer interface {
	Redeem(ctx context.Context, userID, rewardID int64) (*service.RedeemResult, error)
	Cancel(ctx context.Context, userID, redemptionID int64) (*service.CancelResult, error)
	Complete(ctx context.Context, code string) (*domain.Redemption, error)
	GetByUserID(ctx context.Context, userID int64) ([]domain.Redemption, error)
}

type LedgerServicer interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	GetUserLedger(ctx context.Context, userID int64) ([]domain.LedgerEntry, error)
	Reconcile(ctx context.Context, userID int64) (*service.Reconciliation, error)
}
