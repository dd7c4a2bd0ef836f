package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/config"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

const notificationQueueSize = 256

// Publisher is the subset of the redis client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService turns mutation outcome events into notifications: an
// audit row, a message on the redis channel and a webhook stub. Delivery is
// fire-and-forget; events are queued and drained by Run.
type NotificationService struct {
	dispatcher events.Dispatcher
	activity   repository.ActivityRepository
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	queue      chan events.Event
}

// NewNotificationService creates the service. activity and publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, activity repository.ActivityRepository, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		activity:   activity,
		publisher:  publisher,
		logger:     orNop(logger),
		cfg:        cfg,
		queue:      make(chan events.Event, notificationQueueSize),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.enqueue)
	}
}

// Run drains queued events until ctx is cancelled, then flushes what is left.
func (n *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case event := <-n.queue:
			n.deliver(ctx, event)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			for {
				select {
				case event := <-n.queue:
					n.deliver(flushCtx, event)
				default:
					cancel()
					return
				}
			}
		}
	}
}

// ListActivity returns recent audit rows, optionally for one subject.
func (n *NotificationService) ListActivity(ctx context.Context, subject string, limit int) ([]domain.Activity, error) {
	if n.activity == nil {
		return []domain.Activity{}, nil
	}
	rows, err := n.activity.List(ctx, subject, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

func (n *NotificationService) enqueue(_ context.Context, event events.Event) error {
	select {
	case n.queue <- event:
	default:
		n.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event) {
	n.logger.Info("notification",
		zap.String("event_type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.String("actor_kind", event.Actor.Kind),
		zap.String("actor_id", event.Actor.ID))

	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("notification encode failed", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	n.recordActivity(ctx, event)
	n.publish(ctx, event, body)
	n.sendWebhookNotificationStub(event)
}

func (n *NotificationService) recordActivity(ctx context.Context, event events.Event) {
	if n.activity == nil {
		return
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		payload = nil
	}
	entry := &domain.Activity{
		EventType: string(event.Type),
		Subject:   event.Subject,
		ActorKind: event.Actor.Kind,
		ActorID:   event.Actor.ID,
		Payload:   payload,
	}
	if err := n.activity.Create(ctx, entry); err != nil {
		n.logger.Warn("activity record failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

func (n *NotificationService) publish(ctx context.Context, event events.Event, body []byte) {
	if n.publisher == nil || strings.TrimSpace(n.cfg.Channel) == "" {
		return
	}
	if err := n.publisher.Publish(ctx, n.cfg.Channel, body).Err(); err != nil {
		n.logger.Warn("notification publish failed",
			zap.String("channel", n.cfg.Channel),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
