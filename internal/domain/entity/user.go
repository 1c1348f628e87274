package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type User struct {
	ID                 string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Email              string `gorm:"uniqueIndex;not null"`
	PasswordHash       string `gorm:"not null"`
	Name               string `gorm:"not null"`
	Alias              string
	PersonalRating     float64        `gorm:"default:5"`
	InstagramHandle    string
	InstagramFollowers pq.StringArray `gorm:"type:text[]"`
	ClubAffiliations   pq.StringArray `gorm:"type:text[]"`

	CurrentFunctions datatypes.JSONType[[]CurrentFunction] `gorm:"type:jsonb"`
	PastFunctions    datatypes.JSONType[[]FunctionHistory] `gorm:"type:jsonb"`
}

// CurrentFunction is the mirror of an upcoming event embedded in the
// organizer's user document. The standalone Event is the source of truth;
// this is a derived cache updated on each lifecycle transition.
type CurrentFunction struct {
	FunctionName    string   `json:"function_name"`
	EventID         string   `json:"event_id"`
	EmojiVibe       []string `json:"emoji_vibe"`
	Status          string   `json:"status"`
	Date            string   `json:"date"`
	Visibility      string   `json:"public_or_private"`
	InviteCount     int      `json:"number_of_invites"`
	InvitationImage string   `json:"invitation_image,omitempty"`
}

// FunctionHistory is the mirror of a completed event. FinalRating is only
// set once the historical event's rating window has been finalized.
type FunctionHistory struct {
	FunctionName       string   `json:"function_name"`
	EventID            string   `json:"event_id"`
	OriginalEventID    string   `json:"original_event_id"`
	EmojiVibe          []string `json:"emoji_vibe"`
	Status             string   `json:"status"`
	Date               string   `json:"date"`
	Visibility         string   `json:"public_or_private"`
	CompletedAt        string   `json:"completed_at"`
	FinalAttendeeCount int      `json:"final_attendee_count"`
	FinalRating        float64  `json:"final_rating,omitempty"`
	RatingFinalized    bool     `json:"rating_finalized,omitempty"`
	InvitationImage    string   `json:"invitation_image,omitempty"`
}
