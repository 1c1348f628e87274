package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// HistoricalEvent is the archived snapshot of an Event plus its rating
// aggregation state. OriginalEventID is a back-reference, not ownership:
// the live Event row is gone by the time this row exists.
type HistoricalEvent struct {
	ID                  string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	OriginalEventID     string `gorm:"not null;index"`
	Name                string `gorm:"not null"`
	Location            string
	Date                string `gorm:"not null"`
	Description         string
	EmojiVibe           pq.StringArray `gorm:"type:text[]"`
	MaxCapacity         int
	Visibility          string
	ClubAffiliated      bool
	ClubName            string
	OrganizerID         string `gorm:"type:uuid"`
	OrganizerAlias      string
	Status              string
	Attendees           datatypes.JSONType[[]Attendee] `gorm:"type:jsonb"`
	InvitedUsers        pq.StringArray                 `gorm:"type:text[]"`
	RSVPCount           int
	InvitationImage     string
	MovedToHistoricalAt time.Time

	Ratings           datatypes.JSONType[[]Rating] `gorm:"type:jsonb"`
	AverageRating     float64
	TotalRatings      int
	RatingFinalized   bool
	RatingFinalizedAt *time.Time
}

// Rating is one attendee's verdict, embedded in the historical event.
type Rating struct {
	UserID   string `json:"user_id"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment,omitempty"`
	Attended bool   `json:"attended"`
	RatedAt  string `json:"rated_at"`
}

// RatingWindow is how long after the event's start ratings are accepted.
const RatingWindow = 24 * time.Hour

// StartTime parses the archived event's original date.
func (h *HistoricalEvent) StartTime() (time.Time, error) {
	return ParseEventDate(h.Date)
}

// EligibleRaters returns the union of attendee ids and invited user ids.
func (h *HistoricalEvent) EligibleRaters() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, a := range h.Attendees.Data() {
		if _, ok := seen[a.UserID]; !ok {
			seen[a.UserID] = struct{}{}
			ids = append(ids, a.UserID)
		}
	}
	for _, id := range h.InvitedUsers {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// HasRating reports whether the user already rated this event.
func (h *HistoricalEvent) HasRating(userID string) bool {
	for _, r := range h.Ratings.Data() {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
