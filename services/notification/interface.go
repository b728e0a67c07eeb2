package notification

import (
	"context"
	"time"

	resourceRepo "pgmanager/database/repository/resource"
	"pgmanager/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/hibiken/asynq"
)

// NotificationService stores admin notifications and pushes them to devices.
type NotificationService interface {
	// Publish stores n and schedules its push. Failures are logged, never returned,
	// so a committed change is not reported as failed.
	Publish(ctx context.Context, n models.Notification)
	// Schedule queues delivery of a stored notification, or delivers it inline
	// when no queue is configured.
	Schedule(ctx context.Context, n *models.Notification)
	// Deliver pushes a stored notification and marks it pushed.
	Deliver(ctx context.Context, notificationID string) error
	MarkRead(ctx context.Context, notificationID string) (*models.Notification, error)
	// MarkAllRead marks every unread notification read and returns how many changed.
	MarkAllRead(ctx context.Context) (int64, error)
}

// DeviceStore is the slice of the admin repository delivery needs.
type DeviceStore interface {
	DeviceTokens(ctx context.Context, adminID string) ([]string, error)
	RemoveDevices(ctx context.Context, tokens []string) error
}

// Pusher sends a multicast message. *messaging.Client implements it.
type Pusher interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Enqueuer queues a task. *asynq.Client implements it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultNotificationService is the production implementation. Pusher and Queue
// are optional: without a Pusher notifications are stored only, without a Queue
// they are delivered inline.
type DefaultNotificationService struct {
	Repo    resourceRepo.Repository[models.Notification]
	Devices DeviceStore
	Pusher  Pusher
	Queue   Enqueuer
	// StaleToken reports whether a send error means the token should be dropped.
	StaleToken func(err error) bool
	Now        func() time.Time
}

func NewDefaultNotificationService(
	repo resourceRepo.Repository[models.Notification],
	devices DeviceStore,
	pusher Pusher,
	queue Enqueuer,
) *DefaultNotificationService {
	return &DefaultNotificationService{
		Repo:       repo,
		Devices:    devices,
		Pusher:     pusher,
		Queue:      queue,
		StaleToken: staleToken,
		Now:        time.Now,
	}
}

func staleToken(err error) bool {
	return messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)
}
