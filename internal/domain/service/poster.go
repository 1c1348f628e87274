package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
	"github.com/bcplughub/backend/pkg/poster"
	"github.com/google/uuid"
)

type imageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

type blobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string, ttl time.Duration) (string, error)
}

// PosterService produces the invitation artwork for a new function. The
// generated image is preferred; a locally rendered gradient poster is the
// fallback; and when even the upload fails the poster degrades to an
// empty URL rather than blocking event creation.
type PosterService struct {
	imageGen     imageGenerator
	blob         blobStore
	eventBaseURL string
	logger       *types.Logger
}

// NewPosterService creates a PosterService. imageGen may be nil, which
// always takes the fallback path.
func NewPosterService(imageGen imageGenerator, blob blobStore, eventBaseURL string, logger *types.Logger) *PosterService {
	return &PosterService{
		imageGen:     imageGen,
		blob:         blob,
		eventBaseURL: eventBaseURL,
		logger:       logger,
	}
}

func (s *PosterService) GenerateInvite(ctx context.Context, p dto.InvitePoster) string {
	if p.EventURL == "" && s.eventBaseURL != "" {
		p.EventURL = s.eventBaseURL
	}

	data := s.generate(ctx, p)
	if data == nil {
		return ""
	}
	if s.blob == nil {
		return ""
	}

	key := fmt.Sprintf("posters/%s.png", uuid.New().String())
	url, err := s.blob.Put(ctx, key, data, "image/png", 7*24*time.Hour)
	if err != nil {
		s.logger.Errorf("poster upload failed: %v", err)
		return ""
	}
	return url
}

func (s *PosterService) generate(ctx context.Context, p dto.InvitePoster) []byte {
	if s.imageGen != nil {
		data, err := s.imageGen.Generate(ctx, invitePrompt(p))
		if err == nil {
			return data
		}
		s.logger.Debugf("poster generation failed, rendering locally: %v", err)
	}

	data, err := poster.Render(poster.Params{
		FunctionName:   p.FunctionName,
		Location:       p.Location,
		Date:           formatPosterDate(p.Date),
		EmojiVibe:      p.EmojiVibe,
		OrganizerAlias: p.OrganizerAlias,
		Description:    p.Description,
		EventURL:       p.EventURL,
	})
	if err != nil {
		s.logger.Errorf("local poster render failed: %v", err)
		return nil
	}
	return data
}

func invitePrompt(p dto.InvitePoster) string {
	return fmt.Sprintf(`Create a vibrant, eye-catching party invitation poster.

Event: %s
Location: %s
Date: %s
Hosted by: %s
Vibe: %s

Style: Instagram story format (vertical/portrait), modern design, bold typography, energetic party vibe.

Design Elements:
- Large bold title %q
- "YOU'RE INVITED" text prominently displayed
- Purple and blue gradient background
- Event details clearly visible (location, date, host)
- "PlugHub" branding at bottom
- Modern Gen Z aesthetic with vibrant colors
- Trendy, Instagram-ready, shareable design
- Party/event atmosphere matching the vibe emojis

Make it exciting, colorful, and attention-grabbing! Perfect for college students.`,
		p.FunctionName, p.Location, formatPosterDate(p.Date), p.OrganizerAlias, strings.Join(p.EmojiVibe, " "), p.FunctionName)
}

func formatPosterDate(date string) string {
	start, err := entity.ParseEventDate(date)
	if err != nil {
		return "Soon"
	}
	return start.Format("Monday, January 2 at 3:04 PM")
}
