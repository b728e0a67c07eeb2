package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeNotificationPush = "notification:push"
	TypeMarkOverdue      = "billing:mark-overdue"
	TypeGenerateMonthly  = "billing:generate-monthly"
)

// NotificationPushPayload names the stored notification to deliver.
type NotificationPushPayload struct {
	NotificationID string `json:"notificationId"`
}

// GenerateMonthlyPayload carries the billing month (YYYY-MM). An empty month
// means the month the task runs in.
type GenerateMonthlyPayload struct {
	Month string `json:"month,omitempty"`
}

func NewNotificationPushTask(notificationID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(NotificationPushPayload{NotificationID: notificationID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNotificationPush, b)
	opts := []asynq.Option{asynq.MaxRetry(5), asynq.Timeout(30 * time.Second)}

	return task, opts, nil
}

func NewMarkOverdueTask() *asynq.Task {
	return asynq.NewTask(TypeMarkOverdue, nil)
}

func NewGenerateMonthlyTask(month string) (*asynq.Task, error) {
	b, err := json.Marshal(GenerateMonthlyPayload{Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeGenerateMonthly, b), nil
}
