package entity

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	StatusUpcoming  = "upcoming"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"

	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Event struct {
	ID              string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Name            string `gorm:"not null"`
	Location        string `gorm:"not null"`
	Date            string `gorm:"not null"` // ISO-8601, may carry a trailing Z
	Description     string
	EmojiVibe       pq.StringArray `gorm:"type:text[]"`
	MaxCapacity     int            `gorm:"default:50"`
	Visibility      string         `gorm:"default:public"`
	ClubAffiliated  bool
	ClubName        string
	OrganizerID     string `gorm:"not null;type:uuid"`
	OrganizerAlias  string
	Status          string                          `gorm:"default:upcoming"`
	Attendees       datatypes.JSONType[[]Attendee]  `gorm:"type:jsonb"`
	InvitedUsers    pq.StringArray                  `gorm:"type:text[]"`
	InviteCount     int
	RSVPCount       int
	InvitationImage string
}

// Attendee is one confirmed RSVP, embedded in the event document.
type Attendee struct {
	UserID   string `json:"user_id"`
	Alias    string `json:"user_alias"`
	RSVPTime string `json:"rsvp_time"`
}

// StartTime parses the event date. Dates are stored as the raw ISO-8601
// string the client sent, with or without a trailing Z; bare local
// timestamps are interpreted as UTC.
func (e *Event) StartTime() (time.Time, error) {
	return ParseEventDate(e.Date)
}

// IsPast reports whether the event's start is strictly before now.
// Unparseable dates are never considered past.
func (e *Event) IsPast(now time.Time) bool {
	start, err := e.StartTime()
	if err != nil {
		return false
	}
	return start.Before(now)
}

// HasAttendee reports whether the user already holds an RSVP.
func (e *Event) HasAttendee(userID string) bool {
	for _, a := range e.Attendees.Data() {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// ParseEventDate accepts RFC 3339 timestamps and offset-less ISO-8601
// timestamps, which are taken to be UTC.
func ParseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
