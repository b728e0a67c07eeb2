package notification

import (
	"context"
	"fmt"

	"pgmanager/models"
	"pgmanager/services/tasks"
	"pgmanager/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// FCM accepts at most 500 tokens per multicast.
const multicastLimit = 500

func (s *DefaultNotificationService) Publish(ctx context.Context, n models.Notification) {
	logger := utils.GetLogger()
	n.ID = uuid.New().String()
	n.Stamp(s.Now())
	n.IsActive = true
	n.IsRead = false
	n.Pushed = false
	if n.Type == "" {
		n.Type = "info"
	}
	if err := s.Repo.Create(ctx, &n); err != nil {
		logger.Error("Failed to store notification", zap.String("title", n.Title), zap.Error(err))
		return
	}
	s.Schedule(ctx, &n)
}

func (s *DefaultNotificationService) Schedule(ctx context.Context, n *models.Notification) {
	logger := utils.GetLogger()
	if s.Queue != nil {
		task, opts, err := tasks.NewNotificationPushTask(n.ID)
		if err == nil {
			_, err = s.Queue.Enqueue(task, opts...)
		}
		if err == nil {
			return
		}
		logger.Warn("Failed to enqueue notification push, delivering inline",
			zap.String("notificationID", n.ID), zap.Error(err))
	}
	// Inline delivery must outlive the request that triggered it.
	if err := s.Deliver(context.WithoutCancel(ctx), n.ID); err != nil {
		logger.Warn("Notification push failed", zap.String("notificationID", n.ID), zap.Error(err))
	}
}

func (s *DefaultNotificationService) Deliver(ctx context.Context, notificationID string) error {
	n, err := s.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.Pushed || s.Pusher == nil {
		return nil
	}

	tokens, err := s.Devices.DeviceTokens(ctx, n.Recipient)
	if err != nil {
		return fmt.Errorf("failed to load device tokens: %w", err)
	}
	if len(tokens) == 0 {
		utils.GetLogger().Debug("No devices registered for notification", zap.String("notificationID", n.ID))
		return nil
	}

	var delivered int
	var stale []string
	for start := 0; start < len(tokens); start += multicastLimit {
		end := min(start+multicastLimit, len(tokens))
		batch := tokens[start:end]
		resp, err := s.Pusher.SendEachForMulticast(ctx, buildMessage(n, batch))
		if err != nil {
			return fmt.Errorf("failed to send FCM message: %w", err)
		}
		delivered += resp.SuccessCount
		for i, r := range resp.Responses {
			if !r.Success && r.Error != nil && s.StaleToken != nil && s.StaleToken(r.Error) {
				stale = append(stale, batch[i])
			}
		}
	}

	if len(stale) > 0 {
		if err := s.Devices.RemoveDevices(ctx, stale); err != nil {
			utils.GetLogger().Warn("Failed to prune stale device tokens", zap.Int("count", len(stale)), zap.Error(err))
		}
	}
	if delivered == 0 {
		return fmt.Errorf("notification %s reached no device", n.ID)
	}
	utils.GetLogger().Info("Notification pushed",
		zap.String("notificationID", n.ID),
		zap.Int("delivered", delivered),
		zap.Int("stale", len(stale)))
	return s.Repo.UpdateFields(ctx, n.ID, bson.M{"pushed": true})
}

func buildMessage(n *models.Notification, tokens []string) *messaging.MulticastMessage {
	data := map[string]string{
		"notificationId": n.ID,
		"type":           n.Type,
	}
	for k, v := range n.Data {
		data[k] = v
	}
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, err := s.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := s.Repo.UpdateFields(ctx, n.ID, bson.M{"isRead": true, "readAt": s.Now()}); err != nil {
		return nil, err
	}
	return s.Repo.GetByID(ctx, n.ID)
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	n, err := s.Repo.UpdateMany(ctx,
		bson.M{"isRead": false, "isActive": true},
		bson.M{"isRead": true, "readAt": s.Now()})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
