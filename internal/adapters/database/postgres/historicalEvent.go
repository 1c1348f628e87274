package postgres

import (
	"context"

	"github.com/bcplughub/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type HistoricalEventStorage struct {
	db *gorm.DB
}

func NewHistoricalEventStorage(db *gorm.DB) *HistoricalEventStorage {
	return &HistoricalEventStorage{
		db: db,
	}
}

// Create is a function that creates a new historical event in the database.
func (s *HistoricalEventStorage) Create(ctx context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error) {
	err := s.db.WithContext(ctx).Create(&event).Error
	return event, err
}

// Get is a function that gets a historical event from the database by id.
func (s *HistoricalEventStorage) Get(ctx context.Context, id string) (*entity.HistoricalEvent, error) {
	var event entity.HistoricalEvent
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	return &event, mapNotFound(err)
}

// GetByOriginalEventID looks an archived event up by its live-collection id.
func (s *HistoricalEventStorage) GetByOriginalEventID(ctx context.Context, eventID string) (*entity.HistoricalEvent, error) {
	var event entity.HistoricalEvent
	err := s.db.WithContext(ctx).Where("original_event_id = ?", eventID).First(&event).Error
	return &event, mapNotFound(err)
}

// Update is a function that updates a historical event in the database.
func (s *HistoricalEventStorage) Update(ctx context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error) {
	err := s.db.WithContext(ctx).Save(&event).Error
	return event, err
}

// GetWithPagination lists historical events, most recent date first. ISO
// dates sort correctly as strings.
func (s *HistoricalEventStorage) GetWithPagination(ctx context.Context, limit, offset int) ([]entity.HistoricalEvent, error) {
	var events []entity.HistoricalEvent
	err := s.db.WithContext(ctx).Order("date DESC").Offset(offset).Limit(limit).Find(&events).Error
	return events, err
}

// GetUnfinalized returns archived events whose rating window has not been
// closed yet.
func (s *HistoricalEventStorage) GetUnfinalized(ctx context.Context) ([]entity.HistoricalEvent, error) {
	var events []entity.HistoricalEvent
	err := s.db.WithContext(ctx).Where("rating_finalized = ?", false).Find(&events).Error
	return events, err
}
