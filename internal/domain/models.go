package domain

import (
	"time"
)

// User подмножество пользователя, нужное движку: идентификатор выдается сервисом авторизации,
// баланс хранится в минимальных единицах валюты.
type User struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Balance   int64
}

type Reward struct {
	ID             int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Name           string
	Category       RewardCategory
	Cost           int64
	Stock          int64
	Active         bool
	ExpirationDate *time.Time
	MaxPerUser     *int64
}

// IsExpiredAt возвращает true если у награды есть дата окончания и она уже наступила.
func (r *Reward) IsExpiredAt(now time.Time) bool {
	return r.ExpirationDate != nil && !r.ExpirationDate.After(now)
}

type Redemption struct {
	ID          int64
	UserID      int64
	RewardID    int64
	AmountSpent int64
	Code        string
	Status      RedemptionStatusType
	RedeemedAt  time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
	ExpiresAt   time.Time
}

// LedgerEntry неизменяемая запись об изменении баланса. Amount со знаком: отрицательный - списание.
type LedgerEntry struct {
	ID                int64
	CreatedAt         time.Time
	UserID            int64
	Amount            int64
	PreviousBalance   int64
	NewBalance        int64
	TransactionType   TransactionType
	RelatedEntityType RelatedEntityType
	RelatedEntityID   int64
}

// RedemptionEvent событие для внешнего сервиса уведомлений.
type RedemptionEvent struct {
	UserID     int64
	Type       NotificationType
	RewardName string
	Code       string
	OccurredAt time.Time
}
