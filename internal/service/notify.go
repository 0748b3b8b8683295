package service

import (
	"context"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/logger"
	"wheelshare-backend/internal/repository"
)

type notifier struct {
	noteRepo repository.NotificationRepository
	userRepo repository.UserRepository
	email    EmailService
	sms      SMSService
	push     PushService
}

// NewNotifier builds a Notifier over the persisted feed plus optional
// delivery channels; any of email, sms, push may be nil.
func NewNotifier(
	noteRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	email EmailService,
	sms SMSService,
	push PushService,
) Notifier {
	return &notifier{
		noteRepo: noteRepo,
		userRepo: userRepo,
		email:    email,
		sms:      sms,
		push:     push,
	}
}

func (n *notifier) Notify(ctx context.Context, userID int32, kind, title, message string, payload map[string]string) {
	note := &domain.Notification{
		UserID:  userID,
		Kind:    kind,
		Title:   title,
		Message: message,
		Payload: payload,
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to persist notification", "user_id", userID, "kind", kind, "error", err)
	}

	user, err := n.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Warn("Skipping notification delivery, user lookup failed", "user_id", userID, "error", err)
		return
	}

	if n.email != nil && user.Email != "" {
		if err := n.email.Send(ctx, user.Email, title, message); err != nil {
			logger.Warn("Email delivery failed", "user_id", userID, "kind", kind, "error", err)
		}
	}
	if n.sms != nil && user.Phone != "" {
		if err := n.sms.Send(ctx, user.Phone, message); err != nil {
			logger.Warn("SMS delivery failed", "user_id", userID, "kind", kind, "error", err)
		}
	}
	if n.push != nil && user.DeviceToken != "" {
		if err := n.push.Send(ctx, user.DeviceToken, title, message, payload); err != nil {
			logger.Warn("Push delivery failed", "user_id", userID, "kind", kind, "error", err)
		}
	}
}
