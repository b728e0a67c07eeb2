package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pgmanager/config"
	"pgmanager/services/ledger"
	"pgmanager/services/notification"
	"pgmanager/services/tasks"
	"pgmanager/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Cron specs in the server's local time.
const (
	MarkOverdueSpec     = "0 1 * * *"
	GenerateMonthlySpec = "0 2 1 * *"
)

// Jobs are the services background tasks call into.
type Jobs struct {
	Notifications notification.NotificationService
	Ledger        ledger.LedgerService
}

// RedisOpt returns the connection used for the task queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes every task type to its handler.
func NewMux(jobs Jobs) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotificationPush, handleNotificationPush(jobs.Notifications))
	mux.HandleFunc(tasks.TypeMarkOverdue, handleMarkOverdue(jobs.Ledger))
	mux.HandleFunc(tasks.TypeGenerateMonthly, handleGenerateMonthly(jobs.Ledger))
	return mux
}

func handleNotificationPush(svc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.NotificationPushPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			utils.GetLogger().Error("Invalid notification payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
		err := svc.Deliver(ctx, p.NotificationID)
		if utils.IsKind(err, utils.KindNotFound) {
			return fmt.Errorf("notification %s: %v: %w", p.NotificationID, err, asynq.SkipRetry)
		}
		return err
	}
}

func handleMarkOverdue(svc ledger.LedgerService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		n, err := svc.MarkOverdue(ctx)
		if err != nil {
			return err
		}
		utils.GetLogger().Info("Overdue sweep finished", zap.Int64("marked", n))
		return nil
	}
}

func handleGenerateMonthly(svc ledger.LedgerService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.GenerateMonthlyPayload
		if len(task.Payload()) > 0 {
			if err := json.Unmarshal(task.Payload(), &p); err != nil {
				return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
			}
		}
		result, err := svc.GenerateMonthly(ctx, p.Month)
		if err != nil {
			if utils.IsKind(err, utils.KindValidation) {
				return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
			}
			return err
		}
		utils.GetLogger().Info("Monthly bills generated",
			zap.String("month", result.Month),
			zap.Int("created", len(result.Created)),
			zap.Int("skipped", result.Skipped))
		return nil
	}
}

// Worker runs the task server and the periodic scheduler.
type Worker struct {
	srv       *asynq.Server
	scheduler *asynq.Scheduler
	once      sync.Once
}

// StartWorker starts processing tasks and registers the periodic jobs. Startup
// is retried in the background so a late Redis does not stop the API.
func StartWorker(jobs Jobs, redisOpt asynq.RedisConnOpt) (*Worker, error) {
	logger := utils.GetLogger()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"default": 1,
		},
		Logger: logger.Sugar(),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Warn("Task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.Local,
		Logger:   logger.Sugar(),
	})
	if _, err := scheduler.Register(MarkOverdueSpec, tasks.NewMarkOverdueTask()); err != nil {
		return nil, fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	generate, err := tasks.NewGenerateMonthlyTask("")
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(GenerateMonthlySpec, generate); err != nil {
		return nil, fmt.Errorf("failed to schedule bill generation: %w", err)
	}

	w := &Worker{srv: srv, scheduler: scheduler}
	mux := NewMux(jobs)
	go func() {
		logger.Info("Starting task worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				break
			}
			logger.Warn("Task worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Task worker disabled after repeated failures")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
		if err := scheduler.Start(); err != nil {
			logger.Error("Scheduler failed to start", zap.Error(err))
		}
	}()
	return w, nil
}

// Shutdown stops the scheduler and waits for running tasks.
func (w *Worker) Shutdown() {
	w.once.Do(func() {
		w.scheduler.Shutdown()
		w.srv.Shutdown()
	})
}
