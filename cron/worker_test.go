package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"pgmanager/services/ledger"
	"pgmanager/services/notification"
	"pgmanager/services/tasks"
	"pgmanager/utils"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifications struct {
	notification.NotificationService
	delivered []string
	err       error
}

func (f *fakeNotifications) Deliver(ctx context.Context, id string) error {
	f.delivered = append(f.delivered, id)
	return f.err
}

type fakeLedger struct {
	ledger.LedgerService
	months  []string
	overdue int64
	err     error
}

func (f *fakeLedger) GenerateMonthly(ctx context.Context, month string) (*ledger.GenerationResult, error) {
	f.months = append(f.months, month)
	if f.err != nil {
		return nil, f.err
	}
	return &ledger.GenerationResult{Month: month}, nil
}

func (f *fakeLedger) MarkOverdue(ctx context.Context) (int64, error) {
	return f.overdue, f.err
}

func TestNotificationPushHandler(t *testing.T) {
	svc := &fakeNotifications{}
	task, _, err := tasks.NewNotificationPushTask("n-1")
	require.NoError(t, err)

	require.NoError(t, handleNotificationPush(svc)(context.Background(), task))
	assert.Equal(t, []string{"n-1"}, svc.delivered)
}

func TestNotificationPushHandler_MissingSkipsRetry(t *testing.T) {
	svc := &fakeNotifications{err: utils.NotFound("notification not found")}
	task, _, err := tasks.NewNotificationPushTask("gone")
	require.NoError(t, err)

	err = handleNotificationPush(svc)(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNotificationPushHandler_TransientRetries(t *testing.T) {
	svc := &fakeNotifications{err: errors.New("fcm unavailable")}
	task, _, err := tasks.NewNotificationPushTask("n-2")
	require.NoError(t, err)

	err = handleNotificationPush(svc)(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNotificationPushHandler_BadPayload(t *testing.T) {
	err := handleNotificationPush(&fakeNotifications{})(context.Background(), asynq.NewTask(tasks.TypeNotificationPush, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestGenerateMonthlyHandler(t *testing.T) {
	svc := &fakeLedger{}
	task, err := tasks.NewGenerateMonthlyTask("2024-05")
	require.NoError(t, err)
	require.NoError(t, handleGenerateMonthly(svc)(context.Background(), task))

	empty, err := tasks.NewGenerateMonthlyTask("")
	require.NoError(t, err)
	require.NoError(t, handleGenerateMonthly(svc)(context.Background(), empty))

	assert.Equal(t, []string{"2024-05", ""}, svc.months)
}

func TestGenerateMonthlyHandler_InvalidMonthSkipsRetry(t *testing.T) {
	svc := &fakeLedger{err: utils.Validation("month must be YYYY-MM")}
	b, _ := json.Marshal(tasks.GenerateMonthlyPayload{Month: "May"})

	err := handleGenerateMonthly(svc)(context.Background(), asynq.NewTask(tasks.TypeGenerateMonthly, b))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestMarkOverdueHandler(t *testing.T) {
	svc := &fakeLedger{overdue: 3}
	assert.NoError(t, handleMarkOverdue(svc)(context.Background(), tasks.NewMarkOverdueTask()))

	svc.err = errors.New("mongo down")
	assert.Error(t, handleMarkOverdue(svc)(context.Background(), tasks.NewMarkOverdueTask()))
}
