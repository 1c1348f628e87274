package postgres

import (
	"context"

	"github.com/bcplughub/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type NotificationStorage struct {
	db *gorm.DB
}

func NewNotificationStorage(db *gorm.DB) *NotificationStorage {
	return &NotificationStorage{
		db: db,
	}
}

func (s *NotificationStorage) Create(ctx context.Context, notification *entity.Notification) error {
	return s.db.WithContext(ctx).Create(notification).Error
}

// GetByUserID lists a user's notifications, newest first.
func (s *NotificationStorage) GetByUserID(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, error) {
	var notifications []entity.Notification
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	err := q.Find(&notifications).Error
	return notifications, err
}

func (s *NotificationStorage) MarkRead(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id).
		Update("read", true).Error
}

func (s *NotificationStorage) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Notification{}).Error
}
