package expiry

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
)

type Servicer interface {
	PendingForExpiry(ctx context.Context, limit uint) ([]domain.Redemption, error)
	Expire(ctx context.Context, redemptionID int64) (bool, error)
}
