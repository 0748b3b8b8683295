package service

import (
	"context"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/repository"
)

type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

func (s *notificationService) List(ctx context.Context, actor Actor, limit, offset int32) ([]domain.Notification, int32, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.noteRepo.List(ctx, actor.ID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, actor Actor, id int32) error {
	return s.noteRepo.MarkAsRead(ctx, id, actor.ID)
}
