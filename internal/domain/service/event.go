package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
	"gorm.io/datatypes"
)

// institutionalDomain marks invite identifiers that are emails rather than
// user ids.
const institutionalDomain = "@bc.edu"

type EventStorage interface {
	Create(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	GetByStatus(ctx context.Context, status string) ([]entity.Event, error)
	GetPublicUpcoming(ctx context.Context) ([]entity.Event, error)
	GetByOrganizer(ctx context.Context, organizerID, status string) ([]entity.Event, error)
	Update(ctx context.Context, event *entity.Event) (*entity.Event, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type HistoricalEventStorage interface {
	Create(ctx context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error)
	Get(ctx context.Context, id string) (*entity.HistoricalEvent, error)
	GetByOriginalEventID(ctx context.Context, eventID string) (*entity.HistoricalEvent, error)
	Update(ctx context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error)
	GetWithPagination(ctx context.Context, limit, offset int) ([]entity.HistoricalEvent, error)
	GetUnfinalized(ctx context.Context) ([]entity.HistoricalEvent, error)
}

type lifecycleNotifier interface {
	PrivateInvite(ctx context.Context, userID string, event *entity.Event, personalMessage, email string)
	RSVPReceived(ctx context.Context, event *entity.Event, attendeeID, attendeeAlias string)
	RateFunction(ctx context.Context, userID string, hist *entity.HistoricalEvent, deadline time.Time)
	FunctionCancelled(ctx context.Context, userID string, event *entity.Event)
}

type posterGenerator interface {
	GenerateInvite(ctx context.Context, p dto.InvitePoster) string
}

// EventService owns the lifecycle state machine: Upcoming events are
// authoritative rows in the live table, completed ones move to the
// historical table, and the organizer's user document carries derived
// mirrors of both. Mirror writes and notifications are best effort; a
// failed side effect never rolls back the primary transition.
type EventService struct {
	eventStorage   EventStorage
	historyStorage HistoricalEventStorage
	userStorage    UserStorage
	notifier       lifecycleNotifier
	poster         posterGenerator
	logger         *types.Logger
	now            func() time.Time
}

// NewEventService creates an EventService. poster may be nil (no
// invitation artwork); now defaults to time.Now.
func NewEventService(
	events EventStorage,
	history HistoricalEventStorage,
	users UserStorage,
	notifier lifecycleNotifier,
	poster posterGenerator,
	logger *types.Logger,
	now func() time.Time,
) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{
		eventStorage:   events,
		historyStorage: history,
		userStorage:    users,
		notifier:       notifier,
		poster:         poster,
		logger:         logger,
		now:            now,
	}
}

// Create opens a new upcoming function and mirrors it into the organizer's
// current functions.
func (s *EventService) Create(ctx context.Context, data dto.EventCreate) (*entity.Event, error) {
	if data.MaxCapacity == 0 {
		data.MaxCapacity = 50
	}
	if data.MaxCapacity < 0 || data.Name == "" || data.OrganizerID == "" {
		return nil, errorz.Invalid
	}
	visibility := data.Visibility
	if visibility == "" {
		visibility = entity.VisibilityPublic
	}
	if visibility != entity.VisibilityPublic && visibility != entity.VisibilityPrivate {
		return nil, errorz.Invalid
	}

	event := &entity.Event{
		Name:            data.Name,
		Location:        data.Location,
		Date:            data.Date,
		Description:     data.Description,
		EmojiVibe:       data.EmojiVibe,
		MaxCapacity:     data.MaxCapacity,
		Visibility:      visibility,
		ClubAffiliated:  data.ClubAffiliated,
		ClubName:        data.ClubName,
		OrganizerID:     data.OrganizerID,
		OrganizerAlias:  data.OrganizerAlias,
		Status:          entity.StatusUpcoming,
		Attendees:       datatypes.NewJSONType([]entity.Attendee{}),
		InvitedUsers:    []string{},
		InvitationImage: data.InvitationImage,
	}

	if event.InvitationImage == "" && s.poster != nil {
		event.InvitationImage = s.poster.GenerateInvite(ctx, dto.InvitePoster{
			FunctionName:   event.Name,
			Location:       event.Location,
			Date:           event.Date,
			EmojiVibe:      event.EmojiVibe,
			OrganizerAlias: event.OrganizerAlias,
			Description:    event.Description,
		})
	}

	created, err := s.eventStorage.Create(ctx, event)
	if err != nil {
		return nil, err
	}

	s.mirrorCurrentFunction(ctx, created)
	return created, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*entity.Event, error) {
	return s.eventStorage.Get(ctx, id)
}

// GetPublicUpcoming lists the public upcoming feed.
func (s *EventService) GetPublicUpcoming(ctx context.Context) ([]entity.Event, error) {
	return s.eventStorage.GetPublicUpcoming(ctx)
}

// GetHistory lists archived events, most recent first.
func (s *EventService) GetHistory(ctx context.Context, limit, offset int) ([]entity.HistoricalEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.historyStorage.GetWithPagination(ctx, limit, offset)
}

// RSVP adds one attendee. The check-then-append pair is not atomic; two
// racing RSVPs on the last seat can briefly overrun capacity.
func (s *EventService) RSVP(ctx context.Context, eventID, userID, alias string) (*entity.Event, error) {
	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != entity.StatusUpcoming {
		return nil, errorz.Invalid
	}
	if event.HasAttendee(userID) {
		return nil, errorz.AlreadyRegistered
	}

	attendees := event.Attendees.Data()
	if len(attendees) >= event.MaxCapacity {
		return nil, errorz.AtCapacity
	}

	attendees = append(attendees, entity.Attendee{
		UserID:   userID,
		Alias:    alias,
		RSVPTime: s.now().UTC().Format(time.RFC3339),
	})
	event.Attendees = datatypes.NewJSONType(attendees)
	event.RSVPCount = len(attendees)

	updated, err := s.eventStorage.Update(ctx, event)
	if err != nil {
		return nil, err
	}

	s.notifier.RSVPReceived(ctx, updated, userID, alias)
	return updated, nil
}

// CancelRSVP removes the user's RSVP. Removing an absent RSVP is not an
// error; the count is recomputed from the resulting list either way.
func (s *EventService) CancelRSVP(ctx context.Context, eventID, userID string) (*entity.Event, error) {
	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	attendees := event.Attendees.Data()
	kept := attendees[:0]
	for _, a := range attendees {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	event.Attendees = datatypes.NewJSONType(kept)
	event.RSVPCount = len(kept)

	return s.eventStorage.Update(ctx, event)
}

// InviteUsers fans private invites out to a list of identifiers, which are
// either institutional emails or user ids. Unresolved and already-invited
// identifiers are skipped; the whole batch is rejected only when it cannot
// fit under max capacity at all.
func (s *EventService) InviteUsers(ctx context.Context, eventID string, identifiers []string, personalMessage string) (*dto.InviteResult, error) {
	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Visibility != entity.VisibilityPrivate {
		return nil, errorz.Invalid
	}
	if len(event.InvitedUsers)+len(identifiers) > event.MaxCapacity {
		return nil, errorz.CapacityExceeded
	}

	invited := make(map[string]struct{}, len(event.InvitedUsers))
	for _, id := range event.InvitedUsers {
		invited[id] = struct{}{}
	}

	type target struct {
		userID string
		email  string
	}
	var targets []target

	for _, identifier := range identifiers {
		var user *entity.User
		var email string
		if strings.Contains(identifier, institutionalDomain) {
			user, err = s.userStorage.GetByEmail(ctx, identifier)
			email = identifier
		} else {
			user, err = s.userStorage.Get(ctx, identifier)
		}
		if err != nil {
			s.logger.Debugf("invite identifier %q did not resolve, skipping", identifier)
			continue
		}
		if _, ok := invited[user.ID]; ok {
			continue
		}
		invited[user.ID] = struct{}{}
		event.InvitedUsers = append(event.InvitedUsers, user.ID)
		targets = append(targets, target{userID: user.ID, email: email})
	}

	event.InviteCount = len(event.InvitedUsers)
	updated, err := s.eventStorage.Update(ctx, event)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		s.notifier.PrivateInvite(ctx, t.userID, updated, personalMessage, t.email)
	}
	s.updateMirrorInviteCount(ctx, updated)

	return &dto.InviteResult{
		Invited:      len(targets),
		TotalInvited: len(updated.InvitedUsers),
	}, nil
}

// Cancel deletes an upcoming event. Only the organizer may cancel; a
// same-day cancellation costs the organizer two personal-rating points,
// floored at 1.
func (s *EventService) Cancel(ctx context.Context, eventID, actorID string, sameDay bool) error {
	event, err := s.eventStorage.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID != actorID {
		return errorz.Forbidden
	}

	claimed, err := s.eventStorage.Delete(ctx, eventID)
	if err != nil {
		return err
	}
	if !claimed {
		return errorz.NotFound
	}

	organizer, err := s.userStorage.Get(ctx, event.OrganizerID)
	if err != nil {
		s.logger.Errorf("cancel: organizer %s lookup failed: %v", event.OrganizerID, err)
	} else {
		s.dropCurrentFunction(organizer, event.ID)
		if sameDay {
			organizer.PersonalRating -= 2
			if organizer.PersonalRating < 1 {
				organizer.PersonalRating = 1
			}
		}
		if _, err = s.userStorage.Update(ctx, organizer); err != nil {
			s.logger.Errorf("cancel: organizer %s mirror update failed: %v", organizer.ID, err)
		}
	}

	for _, a := range event.Attendees.Data() {
		s.notifier.FunctionCancelled(ctx, a.UserID, event)
	}
	return nil
}

// ArchiveDue sweeps every upcoming event whose start has passed into the
// historical table.
func (s *EventService) ArchiveDue(ctx context.Context) (*dto.ArchiveResult, error) {
	events, err := s.eventStorage.GetByStatus(ctx, entity.StatusUpcoming)
	if err != nil {
		return nil, err
	}
	return s.archivePast(ctx, events), nil
}

// ArchiveForUser is the incremental sweep run when one user's functions
// are loaded. It converges to the same state as ArchiveDue.
func (s *EventService) ArchiveForUser(ctx context.Context, userID string) (*dto.ArchiveResult, error) {
	events, err := s.eventStorage.GetByOrganizer(ctx, userID, entity.StatusUpcoming)
	if err != nil {
		return nil, err
	}
	return s.archivePast(ctx, events), nil
}

func (s *EventService) archivePast(ctx context.Context, events []entity.Event) *dto.ArchiveResult {
	result := &dto.ArchiveResult{}
	now := s.now()
	for i := range events {
		event := events[i]
		if !event.IsPast(now) {
			continue
		}
		moved, mirrored, err := s.archive(ctx, &event)
		if err != nil {
			s.logger.Errorf("archive of event %s failed: %v", event.ID, err)
			continue
		}
		if moved {
			result.EventsMoved++
		}
		if mirrored {
			result.UsersUpdated++
		}
	}
	return result
}

// archive moves one passed event to the historical table. The live-row
// delete is the claim: when concurrent sweeps race on the same event, only
// the sweep whose delete reports an affected row writes the history row
// and the organizer mirrors. The second result reports whether the
// organizer mirror was actually written.
func (s *EventService) archive(ctx context.Context, event *entity.Event) (bool, bool, error) {
	claimed, err := s.eventStorage.Delete(ctx, event.ID)
	if err != nil {
		return false, false, err
	}
	if !claimed {
		return false, false, nil
	}

	now := s.now().UTC()
	hist := &entity.HistoricalEvent{
		OriginalEventID:     event.ID,
		Name:                event.Name,
		Location:            event.Location,
		Date:                event.Date,
		Description:         event.Description,
		EmojiVibe:           event.EmojiVibe,
		MaxCapacity:         event.MaxCapacity,
		Visibility:          event.Visibility,
		ClubAffiliated:      event.ClubAffiliated,
		ClubName:            event.ClubName,
		OrganizerID:         event.OrganizerID,
		OrganizerAlias:      event.OrganizerAlias,
		Status:              entity.StatusCompleted,
		Attendees:           event.Attendees,
		InvitedUsers:        event.InvitedUsers,
		RSVPCount:           event.RSVPCount,
		InvitationImage:     event.InvitationImage,
		MovedToHistoricalAt: now,
		Ratings:             datatypes.NewJSONType([]entity.Rating{}),
	}
	created, err := s.historyStorage.Create(ctx, hist)
	if err != nil {
		return false, false, err
	}

	mirrored := s.moveMirrorToPast(ctx, event, created, now)

	deadline := now.Add(entity.RatingWindow)
	if start, errParse := created.StartTime(); errParse == nil {
		deadline = start.Add(entity.RatingWindow)
	}
	for _, userID := range created.EligibleRaters() {
		s.notifier.RateFunction(ctx, userID, created, deadline)
	}

	return true, mirrored, nil
}

// StartArchiveScheduler starts the periodic archive and rating-window
// sweeps.
func (s *EventService) StartArchiveScheduler(interval time.Duration) {
	s.logger.Info("Starting archive scheduler")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			ctx := context.Background()
			if result, err := s.ArchiveDue(ctx); err != nil {
				s.logger.Errorf("archive sweep failed: %v", err)
			} else if result.EventsMoved > 0 {
				s.logger.Infof("archive sweep moved %d events", result.EventsMoved)
			}
			if err := s.FinalizeDue(ctx); err != nil {
				s.logger.Errorf("finalize sweep failed: %v", err)
			}
		}
	}()
}

// mirrorCurrentFunction appends the event to the organizer's current
// functions, keeping them ordered by date.
func (s *EventService) mirrorCurrentFunction(ctx context.Context, event *entity.Event) {
	organizer, err := s.userStorage.Get(ctx, event.OrganizerID)
	if err != nil {
		s.logger.Errorf("mirror: organizer %s lookup failed: %v", event.OrganizerID, err)
		return
	}

	current := append(organizer.CurrentFunctions.Data(), entity.CurrentFunction{
		FunctionName:    event.Name,
		EventID:         event.ID,
		EmojiVibe:       event.EmojiVibe,
		Status:          event.Status,
		Date:            event.Date,
		Visibility:      event.Visibility,
		InvitationImage: event.InvitationImage,
	})
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].Date < current[j].Date
	})
	organizer.CurrentFunctions = datatypes.NewJSONType(current)

	if _, err = s.userStorage.Update(ctx, organizer); err != nil {
		s.logger.Errorf("mirror: organizer %s update failed: %v", organizer.ID, err)
	}
}

func (s *EventService) updateMirrorInviteCount(ctx context.Context, event *entity.Event) {
	organizer, err := s.userStorage.Get(ctx, event.OrganizerID)
	if err != nil {
		s.logger.Errorf("mirror: organizer %s lookup failed: %v", event.OrganizerID, err)
		return
	}

	current := organizer.CurrentFunctions.Data()
	for i := range current {
		if current[i].EventID == event.ID {
			current[i].InviteCount = event.InviteCount
		}
	}
	organizer.CurrentFunctions = datatypes.NewJSONType(current)

	if _, err = s.userStorage.Update(ctx, organizer); err != nil {
		s.logger.Errorf("mirror: organizer %s update failed: %v", organizer.ID, err)
	}
}

func (s *EventService) dropCurrentFunction(organizer *entity.User, eventID string) {
	current := organizer.CurrentFunctions.Data()
	kept := current[:0]
	for _, f := range current {
		if f.EventID != eventID {
			kept = append(kept, f)
		}
	}
	organizer.CurrentFunctions = datatypes.NewJSONType(kept)
}

// moveMirrorToPast moves the organizer's mirror entry from current to past
// with the completion annotations. It reports whether the organizer record
// was actually updated.
func (s *EventService) moveMirrorToPast(ctx context.Context, event *entity.Event, hist *entity.HistoricalEvent, completedAt time.Time) bool {
	organizer, err := s.userStorage.Get(ctx, event.OrganizerID)
	if err != nil {
		s.logger.Errorf("mirror: organizer %s lookup failed: %v", event.OrganizerID, err)
		return false
	}

	s.dropCurrentFunction(organizer, event.ID)

	past := append(organizer.PastFunctions.Data(), entity.FunctionHistory{
		FunctionName:       event.Name,
		EventID:            hist.ID,
		OriginalEventID:    event.ID,
		EmojiVibe:          event.EmojiVibe,
		Status:             entity.StatusCompleted,
		Date:               event.Date,
		Visibility:         event.Visibility,
		CompletedAt:        completedAt.Format(time.RFC3339),
		FinalAttendeeCount: len(event.Attendees.Data()),
		InvitationImage:    event.InvitationImage,
	})
	organizer.PastFunctions = datatypes.NewJSONType(past)

	if _, err = s.userStorage.Update(ctx, organizer); err != nil {
		s.logger.Errorf("mirror: organizer %s update failed: %v", organizer.ID, err)
		return false
	}
	return true
}
