package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher the issue service publishes on.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker started")
	}
}
