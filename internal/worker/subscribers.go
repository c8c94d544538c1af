package worker

import (
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/service"
)

// StartEventSubscribers registers the in-process event consumers. Nil
// arguments are skipped.
func StartEventSubscribers(dispatcher events.Dispatcher, notifications *service.NotificationService, redraw *RedrawWorker) {
	if dispatcher == nil {
		return
	}
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if redraw != nil {
		dispatcher.Subscribe(events.EventCapacityReleased, redraw.HandleCapacityReleased)
	}
}
