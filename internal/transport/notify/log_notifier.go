package notify

import (
	"context"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/sirupsen/logrus"
)

// LogNotifier пишет события в лог, используется когда брокер не настроен.
type LogNotifier struct {
	logger *logrus.Entry
}

func NewLogNotifier(l *logrus.Logger) *LogNotifier {
	return &LogNotifier{
		logger: l.WithFields(logrus.Fields{
			"component": "notify",
			"module":    "log",
		}),
	}
}

func (n *LogNotifier) Notify(_ context.Context, event domain.RedemptionEvent) error {
	n.logger.WithFields(logrus.Fields{
		"user_id":     event.UserID,
		"type":        event.Type,
		"reward_name": event.RewardName,
		"code":        event.Code,
		"occurred_at": event.OccurredAt,
	}).Info("redemption notification")
	return nil
}
