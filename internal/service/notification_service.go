package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
)

// Notice is one outbound message derived from a scheduling event.
type Notice struct {
	Channel   string
	Recipient string
	Subject   string
	EventID   string
	EventType events.EventType
}

// NoticeSender delivers notices. Delivery lives outside this service, so the
// default sender only writes them to the log.
type NoticeSender interface {
	Send(ctx context.Context, notice Notice) error
}

type logSender struct {
	logger *zap.Logger
}

func (s logSender) Send(_ context.Context, n Notice) error {
	s.logger.Info("notification",
		zap.String("channel", n.Channel),
		zap.String("recipient", n.Recipient),
		zap.String("subject", n.Subject),
		zap.String("event_id", n.EventID),
		zap.String("event_type", string(n.EventType)),
	)
	return nil
}

// NotificationService turns assignment events into notices for the
// configured email and webhook channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	sender     NoticeSender
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service with a log-only sender.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, sender: logSender{logger: logger}, cfg: cfg}
}

// WithSender replaces the delivery backend.
func (n *NotificationService) WithSender(sender NoticeSender) *NotificationService {
	if sender != nil {
		n.sender = sender
	}
	return n
}

// RegisterHandlers subscribes to the events that produce notices.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, t := range []events.EventType{
		events.EventAssignmentCreated,
		events.EventWorkItemQueued,
		events.EventAssignmentReleased,
	} {
		n.dispatcher.Subscribe(t, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	var firstErr error
	for _, notice := range n.notices(event) {
		if err := n.sender.Send(ctx, notice); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("send %s notice: %w", notice.Channel, err)
		}
	}
	return firstErr
}

// notices maps an event to its messages. Assignees get email for new work;
// the webhook sees every event.
func (n *NotificationService) notices(event events.Event) []Notice {
	base := Notice{EventID: event.ID, EventType: event.Type}
	var out []Notice

	if event.Type == events.EventAssignmentCreated && strings.TrimSpace(n.cfg.EmailFrom) != "" && event.StaffID != "" {
		email := base
		email.Channel = "email"
		email.Recipient = event.StaffID
		email.Subject = fmt.Sprintf("Work item %s assigned to you", event.WorkItemID)
		if p, ok := event.Payload.(events.AssignmentCreatedPayload); ok && p.Forced {
			email.Subject += " (manual override)"
		}
		out = append(out, email)
	}

	if url := strings.TrimSpace(n.cfg.WebhookURL); url != "" {
		hook := base
		hook.Channel = "webhook"
		hook.Recipient = url
		hook.Subject = webhookSubject(event)
		out = append(out, hook)
	}
	return out
}

func webhookSubject(event events.Event) string {
	switch event.Type {
	case events.EventAssignmentCreated:
		return fmt.Sprintf("%s assigned to %s", event.WorkItemID, event.StaffID)
	case events.EventWorkItemQueued:
		if p, ok := event.Payload.(events.WorkItemQueuedPayload); ok {
			return fmt.Sprintf("%s queued at %s priority", event.WorkItemID, p.Priority)
		}
		return fmt.Sprintf("%s queued", event.WorkItemID)
	case events.EventAssignmentReleased:
		if p, ok := event.Payload.(events.AssignmentReleasedPayload); ok {
			return fmt.Sprintf("%s %s by %s", event.WorkItemID, p.Status, event.StaffID)
		}
		return fmt.Sprintf("%s released by %s", event.WorkItemID, event.StaffID)
	}
	return string(event.Type)
}
