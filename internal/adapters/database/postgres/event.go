package postgres

import (
	"context"

	"github.com/bcplughub/backend/internal/domain/entity"
	"gorm.io/gorm"
)

type EventStorage struct {
	db *gorm.DB
}

func NewEventStorage(db *gorm.DB) *EventStorage {
	return &EventStorage{
		db: db,
	}
}

// Create is a function that creates a new event in the database.
func (s *EventStorage) Create(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Create(&event).Error
	return event, err
}

// Get is a function that gets an event from the database by id.
func (s *EventStorage) Get(ctx context.Context, id string) (*entity.Event, error) {
	var event entity.Event
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	return &event, mapNotFound(err)
}

// GetByStatus is a function that gets all events with the given status.
func (s *EventStorage) GetByStatus(ctx context.Context, status string) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).Where("status = ?", status).Find(&events).Error
	return events, err
}

// GetPublicUpcoming is a function that gets all public upcoming events.
func (s *EventStorage) GetPublicUpcoming(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := s.db.WithContext(ctx).
		Where("visibility = ? AND status = ?", entity.VisibilityPublic, entity.StatusUpcoming).
		Find(&events).Error
	return events, err
}

// GetByOrganizer is a function that gets an organizer's events, optionally
// restricted to one status.
func (s *EventStorage) GetByOrganizer(ctx context.Context, organizerID, status string) ([]entity.Event, error) {
	var events []entity.Event
	q := s.db.WithContext(ctx).Where("organizer_id = ?", organizerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&events).Error
	return events, err
}

// Update is a function that updates an event in the database.
func (s *EventStorage) Update(ctx context.Context, event *entity.Event) (*entity.Event, error) {
	err := s.db.WithContext(ctx).Save(&event).Error
	return event, err
}

// Delete removes the event row and reports whether this caller removed it.
// The bool is the archive sweep's compare-and-move claim: when two sweeps
// race on the same passed event, only one sees a row to delete.
func (s *EventStorage) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Event{})
	return res.RowsAffected > 0, res.Error
}

// Count is a function that gets the count of events from the database.
func (s *EventStorage) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Event{}).Count(&count).Error
	return count, err
}
