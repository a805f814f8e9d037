package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const DefaultSubjectPrefix = "rewards.redemptions"

// NatsNotifier публикует события погашений в subject <prefix>.<type>.
type NatsNotifier struct {
	pub           Publisher
	subjectPrefix string
	logger        *logrus.Entry
}

func NewNatsNotifier(pub Publisher, l *logrus.Logger) *NatsNotifier {
	return &NatsNotifier{
		pub:           pub,
		subjectPrefix: DefaultSubjectPrefix,
		logger: l.WithFields(logrus.Fields{
			"component": "notify",
			"module":    "nats",
		}),
	}
}

func (n *NatsNotifier) SetSubjectPrefix(prefix string) *NatsNotifier {
	n.subjectPrefix = prefix
	return n
}

func (n *NatsNotifier) Notify(ctx context.Context, event domain.RedemptionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	payload := Event{
		EventID:    uuid.NewString(),
		UserID:     event.UserID,
		Type:       event.Type,
		RewardName: event.RewardName,
		Code:       event.Code,
		OccurredAt: event.OccurredAt.UTC(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	subject := n.Subject(event.Type)
	if pubErr := n.pub.Publish(subject, data); pubErr != nil {
		return fmt.Errorf("publish notification to %s: %w", subject, pubErr)
	}
	n.logger.WithFields(logrus.Fields{
		"event_id": payload.EventID,
		"subject":  subject,
	}).Debug("notification published")
	return nil
}

func (n *NatsNotifier) Subject(t domain.NotificationType) string {
	return n.subjectPrefix + "." + string(t)
}

// Connect подключается к NATS. Пустой url означает что брокер не настроен, возвращается nil без ошибки.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, nil //nolint:nilnil
	}

	nc, err := nats.Connect(url, nats.Name("groph-rewards"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}
