package postgres

import "github.com/bcplughub/backend/internal/domain/entity"

// Migrations is a list of all gorm migrations for the database.
var Migrations = []interface{}{
	&entity.User{},
	&entity.Event{},
	&entity.HistoricalEvent{},
	&entity.Notification{},
}
