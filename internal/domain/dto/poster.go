package dto

// InvitePoster is the metadata an invite image is generated from.
type InvitePoster struct {
	FunctionName   string
	Location       string
	Date           string
	EmojiVibe      []string
	OrganizerAlias string
	Description    string
	EventURL       string
}
