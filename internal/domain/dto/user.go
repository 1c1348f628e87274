package dto

import "github.com/bcplughub/backend/internal/domain/entity"

// UserRegister carries a registration request. The password is hashed
// before it ever reaches storage.
type UserRegister struct {
	Email           string
	Password        string
	Name            string
	InstagramHandle string
}

// UserProfile is the public view of a user.
type UserProfile struct {
	UserID         string   `json:"user_id"`
	Email          string   `json:"bc_email"`
	Name           string   `json:"name"`
	Alias          string   `json:"ai_generated_alias,omitempty"`
	PersonalRating float64  `json:"personal_rating"`
	Clubs          []string `json:"bc_club_affiliations"`
	CreatedAt      string   `json:"created_at"`
}

// DirectoryEntry is the trimmed listing used when picking invitees.
type DirectoryEntry struct {
	UserID         string  `json:"user_id"`
	Alias          string  `json:"ai_generated_alias"`
	Email          string  `json:"bc_email"`
	PersonalRating float64 `json:"personal_rating"`
}

// UserFunctions is a user's mirrors, sorted for display: current ascending
// by date, past most recent first.
type UserFunctions struct {
	UserID           string                   `json:"user_id"`
	CurrentFunctions []entity.CurrentFunction `json:"current_functions"`
	PastFunctions    []entity.FunctionHistory `json:"past_functions"`
	PersonalRating   float64                  `json:"personal_rating"`
}

func NewUserProfile(u *entity.User) UserProfile {
	return UserProfile{
		UserID:         u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Alias:          u.Alias,
		PersonalRating: u.PersonalRating,
		Clubs:          u.ClubAffiliations,
		CreatedAt:      u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
