package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
)

type CreateRedemption struct {
	UserID      int64
	RewardID    int64
	AmountSpent int64
	Code        string
	RedeemedAt  time.Time
	ExpiresAt   time.Time
}

// ExpiredPending параметры выборки просроченных pending погашений для фонового процесса.
type ExpiredPending struct {
	Now   time.Time
	Limit uint
}

type RedemptionStatusUpdate struct {
	ID     int64
	Status domain.RedemptionStatusType
	At     time.Time
}
