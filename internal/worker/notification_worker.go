package worker

import (
	"context"
	"sync"

	"github.com/fieldops/field-console/internal/service"
)

// StartNotificationWorker registers notification handlers and drains the
// notification queue in the background. The returned wait blocks until the
// worker stopped after ctx was cancelled.
func StartNotificationWorker(ctx context.Context, notificationService *service.NotificationService) (wait func()) {
	if notificationService == nil {
		return func() {}
	}
	notificationService.RegisterHandlers()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		notificationService.Run(ctx)
	}()
	return wg.Wait
}
