package dto

// EventCreate carries everything needed to open a new function.
type EventCreate struct {
	Name            string
	Location        string
	Date            string
	Description     string
	EmojiVibe       []string
	MaxCapacity     int
	Visibility      string
	ClubAffiliated  bool
	ClubName        string
	OrganizerID     string
	OrganizerAlias  string
	InvitationImage string
}

// InviteResult reports partial-success invite fan-out: identifiers that do
// not resolve to a user, or are already invited, are skipped rather than
// failing the whole operation.
type InviteResult struct {
	Invited      int
	TotalInvited int
}

// RateFunction is one user's rating submission for an archived event.
type RateFunction struct {
	UserID   string
	Rating   int
	Comment  string
	Attended bool
}

// ArchiveResult summarizes one archive sweep.
type ArchiveResult struct {
	EventsMoved  int
	UsersUpdated int
}
