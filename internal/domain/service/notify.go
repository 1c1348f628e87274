package service

import (
	"context"
	"time"

	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
	"gorm.io/datatypes"
)

type NotificationStorage interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUserID(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type inviteMailer interface {
	SendInviteEmail(to, functionName, organizerAlias, posterURL string)
}

// NotifyService persists in-app notifications and optionally mirrors
// private invites to email. Every emit helper is fire-and-forget: failures
// are logged and never bubble into the calling transition.
type NotifyService struct {
	notificationStorage NotificationStorage
	mailer              inviteMailer
	logger              *types.Logger
}

// NewNotifyService creates a NotifyService. mailer may be nil, in which
// case the email side channel is disabled.
func NewNotifyService(storage NotificationStorage, mailer inviteMailer, logger *types.Logger) *NotifyService {
	return &NotifyService{
		notificationStorage: storage,
		mailer:              mailer,
		logger:              logger,
	}
}

// ListForUser returns a user's notifications newest first plus the unread
// count.
func (s *NotifyService) ListForUser(ctx context.Context, userID string, unreadOnly bool) ([]entity.Notification, int, error) {
	notifications, err := s.notificationStorage.GetByUserID(ctx, userID, unreadOnly)
	if err != nil {
		return nil, 0, err
	}
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}
	return notifications, unread, nil
}

func (s *NotifyService) MarkRead(ctx context.Context, id string) error {
	return s.notificationStorage.MarkRead(ctx, id)
}

func (s *NotifyService) Delete(ctx context.Context, id string) error {
	return s.notificationStorage.Delete(ctx, id)
}

// PrivateInvite notifies one newly invited user. When the invite was
// addressed by email the same invite also goes out through the mailer.
func (s *NotifyService) PrivateInvite(ctx context.Context, userID string, event *entity.Event, personalMessage, email string) {
	metadata := datatypes.JSONMap{}
	if personalMessage != "" {
		metadata["personal_message"] = personalMessage
	}
	s.emit(ctx, &entity.Notification{
		UserID:         userID,
		Type:           entity.NotificationTypePrivateInvite,
		Title:          "🎉 You're Invited!",
		Message:        event.OrganizerAlias + " invited you to " + event.Name,
		EventID:        event.ID,
		EventName:      event.Name,
		SenderID:       event.OrganizerID,
		SenderAlias:    event.OrganizerAlias,
		ActionRequired: true,
		Metadata:       metadata,
	})
	if email != "" && s.mailer != nil {
		s.mailer.SendInviteEmail(email, event.Name, event.OrganizerAlias, event.InvitationImage)
	}
}

// RSVPReceived notifies the organizer about a new attendee.
func (s *NotifyService) RSVPReceived(ctx context.Context, event *entity.Event, attendeeID, attendeeAlias string) {
	s.emit(ctx, &entity.Notification{
		UserID:      event.OrganizerID,
		Type:        entity.NotificationTypeRSVPReceived,
		Title:       "✅ New RSVP!",
		Message:     attendeeAlias + " RSVP'd to " + event.Name,
		EventID:     event.ID,
		EventName:   event.Name,
		SenderID:    attendeeID,
		SenderAlias: attendeeAlias,
	})
}

// RateFunction asks an eligible rater to rate an archived function before
// the deadline. The expiry is advisory only.
func (s *NotifyService) RateFunction(ctx context.Context, userID string, hist *entity.HistoricalEvent, deadline time.Time) {
	s.emit(ctx, &entity.Notification{
		UserID:         userID,
		Type:           entity.NotificationTypeRateFunction,
		Title:          "⭐ Rate the Function",
		Message:        "How was " + hist.Name + "? Rate it now!",
		EventID:        hist.OriginalEventID,
		EventName:      hist.Name,
		SenderID:       hist.OrganizerID,
		SenderAlias:    hist.OrganizerAlias,
		ExpiresAt:      &deadline,
		ActionRequired: true,
		Metadata:       datatypes.JSONMap{"rating_deadline": deadline.Format(time.RFC3339)},
	})
}

// FunctionCancelled notifies an attendee that the function was called off.
func (s *NotifyService) FunctionCancelled(ctx context.Context, userID string, event *entity.Event) {
	s.emit(ctx, &entity.Notification{
		UserID:      userID,
		Type:        entity.NotificationTypeFunctionCancelled,
		Title:       "🚫 Function Cancelled",
		Message:     event.Name + " was cancelled by " + event.OrganizerAlias,
		EventID:     event.ID,
		EventName:   event.Name,
		SenderID:    event.OrganizerID,
		SenderAlias: event.OrganizerAlias,
	})
}

func (s *NotifyService) emit(ctx context.Context, notification *entity.Notification) {
	if err := s.notificationStorage.Create(ctx, notification); err != nil {
		s.logger.Errorf("failed to create %s notification for user %s: %v", notification.Type, notification.UserID, err)
	}
}
