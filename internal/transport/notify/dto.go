package notify

import (
	"time"

	"github.com/fsdevblog/groph-rewards/internal/domain"
)

// Event формат сообщения для сервиса уведомлений.
type Event struct {
	EventID    string                  `json:"event_id"`
	UserID     int64                   `json:"user_id"`
	Type       domain.NotificationType `json:"type"`
	RewardName string                  `json:"reward_name"`
	Code       string                  `json:"code"`
	OccurredAt time.Time               `json:"occurred_at"`
}
