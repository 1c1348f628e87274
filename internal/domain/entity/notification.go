package entity

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationTypePrivateInvite     NotificationType = "private_invite"
	NotificationTypeRSVPReceived      NotificationType = "rsvp_received"
	NotificationTypeRateFunction      NotificationType = "rate_function"
	NotificationTypeFunctionCancelled NotificationType = "function_cancelled"
)

// Notification is a fire-and-forget message to one user. ExpiresAt is
// advisory metadata for clients; the core never enforces it.
type Notification struct {
	ID             string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt      time.Time
	UserID         string           `gorm:"not null;index;type:uuid"`
	Type           NotificationType `gorm:"not null"`
	Title          string
	Message        string
	EventID        string
	EventName      string
	SenderID       string
	SenderAlias    string
	Read           bool `gorm:"default:false"`
	ExpiresAt      *time.Time
	ActionRequired bool
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
}
