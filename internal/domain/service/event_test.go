package service

import (
	"context"
	"testing"
	"time"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func futureDate(d time.Duration) string {
	return testNow.Add(d).Format("2006-01-02T15:04:05") + "Z"
}

func TestCreateDefaultsAndMirror(t *testing.T) {
	svc, _, _, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Velvet Wolf")

	event, err := svc.Create(context.Background(), dto.EventCreate{
		Name:           "Rooftop Jam",
		Location:       "Walsh Hall",
		Date:           futureDate(48 * time.Hour),
		OrganizerID:    organizer.ID,
		OrganizerAlias: organizer.Alias,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, event.MaxCapacity)
	assert.Equal(t, entity.StatusUpcoming, event.Status)
	assert.Equal(t, entity.VisibilityPublic, event.Visibility)
	assert.Equal(t, 0, event.RSVPCount)

	stored, err := users.Get(context.Background(), organizer.ID)
	require.NoError(t, err)
	current := stored.CurrentFunctions.Data()
	require.Len(t, current, 1)
	assert.Equal(t, event.ID, current[0].EventID)
	assert.Equal(t, "Rooftop Jam", current[0].FunctionName)
}

func TestCreateRejectsNegativeCapacity(t *testing.T) {
	svc, _, _, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Neon Raven")

	_, err := svc.Create(context.Background(), dto.EventCreate{
		Name:        "Bad Event",
		MaxCapacity: -1,
		OrganizerID: organizer.ID,
	})
	assert.ErrorIs(t, err, errorz.Invalid)
}

func TestCreateMissingOrganizerStillSucceeds(t *testing.T) {
	svc, _, _, _, _, _ := newLifecycleFixture(testNow)

	event, err := svc.Create(context.Background(), dto.EventCreate{
		Name:        "Orphan Event",
		OrganizerID: "00000000-0000-0000-0000-000000000001",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
}

func TestRSVPDuplicateAndCapacity(t *testing.T) {
	svc, events, _, users, notifier, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Golden Tiger")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 2, entity.VisibilityPublic)

	_, err := svc.RSVP(context.Background(), event.ID, "u1", "Guest One")
	require.NoError(t, err)

	_, err = svc.RSVP(context.Background(), event.ID, "u1", "Guest One")
	assert.ErrorIs(t, err, errorz.AlreadyRegistered)

	_, err = svc.RSVP(context.Background(), event.ID, "u2", "Guest Two")
	require.NoError(t, err)

	// the duplicate and capacity guards are check-then-append, not atomic:
	// two RSVPs racing for the last seat can briefly overrun capacity.
	// Sequential calls always see the guard.
	_, err = svc.RSVP(context.Background(), event.ID, "u3", "Guest Three")
	assert.ErrorIs(t, err, errorz.AtCapacity)

	stored, _ := events.Get(context.Background(), event.ID)
	assert.Equal(t, 2, stored.RSVPCount)
	assert.Len(t, stored.Attendees.Data(), 2)
	assert.Equal(t, 2, notifier.count("rsvp"))
}

func TestCancelRSVPAbsentIsNoError(t *testing.T) {
	svc, events, _, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Cosmic Viper")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 10, entity.VisibilityPublic)

	_, err := svc.RSVP(context.Background(), event.ID, "u1", "Guest")
	require.NoError(t, err)

	updated, err := svc.CancelRSVP(context.Background(), event.ID, "nobody")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.RSVPCount)

	updated, err = svc.CancelRSVP(context.Background(), event.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.RSVPCount)
	assert.Empty(t, updated.Attendees.Data())
}

func TestInviteRequiresPrivateEvent(t *testing.T) {
	svc, events, _, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Urban Falcon")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 10, entity.VisibilityPublic)

	_, err := svc.InviteUsers(context.Background(), event.ID, []string{"whoever"}, "")
	assert.ErrorIs(t, err, errorz.Invalid)
}

func TestInviteCapacityExceededCreatesNothing(t *testing.T) {
	svc, events, _, users, notifier, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Shadow Cipher")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 2, entity.VisibilityPrivate)

	guests := []string{
		seedUser(users, "g1").ID,
		seedUser(users, "g2").ID,
		seedUser(users, "g3").ID,
	}
	_, err := svc.InviteUsers(context.Background(), event.ID, guests, "")
	assert.ErrorIs(t, err, errorz.CapacityExceeded)

	stored, _ := events.Get(context.Background(), event.ID)
	assert.Empty(t, stored.InvitedUsers)
	assert.Equal(t, 0, notifier.count("invite"))
}

func TestInviteSkipsUnresolvedAndDuplicates(t *testing.T) {
	svc, events, _, users, notifier, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Electric Phoenix")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 10, entity.VisibilityPrivate)

	guest := seedUser(users, "guest")
	byEmail := seedUser(users, "mailguest")

	result, err := svc.InviteUsers(context.Background(), event.ID, []string{
		guest.ID,
		guest.ID,             // duplicate in the same batch
		"ghost@bc.edu",       // unresolved email
		byEmail.Email,        // resolved by institutional email
		"not-a-real-user-id", // unresolved id
	}, "pull up")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Invited)
	assert.Equal(t, 2, result.TotalInvited)
	assert.Equal(t, 2, notifier.count("invite"))

	// a second batch with an already invited user adds nothing
	result, err = svc.InviteUsers(context.Background(), event.ID, []string{guest.ID}, "")
	require.NoError(t, err)
	assert.Equal(t, 0, result.Invited)
	assert.Equal(t, 2, result.TotalInvited)
}

func TestCancelForbiddenForNonOrganizer(t *testing.T) {
	svc, events, _, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Mystic Dragon")
	intruder := seedUser(users, "Digital Thunder")
	event := seedEvent(events, organizer, futureDate(24*time.Hour), 10, entity.VisibilityPublic)

	err := svc.Cancel(context.Background(), event.ID, intruder.ID, false)
	assert.ErrorIs(t, err, errorz.Forbidden)

	_, err = events.Get(context.Background(), event.ID)
	assert.NoError(t, err)
}

func TestCancelSameDayPenaltyFloorsAtOne(t *testing.T) {
	svc, events, _, users, notifier, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Midnight Phantom")
	organizer.PersonalRating = 2.5
	_, err := users.Update(context.Background(), organizer)
	require.NoError(t, err)

	event := seedEvent(events, organizer, futureDate(6*time.Hour), 10, entity.VisibilityPublic)
	_, err = svc.RSVP(context.Background(), event.ID, "u1", "Guest")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), event.ID, organizer.ID, true))

	stored, _ := users.Get(context.Background(), organizer.ID)
	assert.Equal(t, 1.0, stored.PersonalRating)
	assert.Equal(t, 1, notifier.count("cancelled"))

	_, err = events.Get(context.Background(), event.ID)
	assert.ErrorIs(t, err, errorz.NotFound)

	// a second same-day cancel cannot push below the floor either
	other := seedEvent(events, organizer, futureDate(7*time.Hour), 10, entity.VisibilityPublic)
	require.NoError(t, svc.Cancel(context.Background(), other.ID, organizer.ID, true))
	stored, _ = users.Get(context.Background(), organizer.ID)
	assert.Equal(t, 1.0, stored.PersonalRating)
}

func TestArchiveDueMovesOnlyPastEvents(t *testing.T) {
	svc, events, history, users, notifier, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Velvet Thunder")

	past := seedEvent(events, organizer, testNow.Add(-2*time.Hour).Format("2006-01-02T15:04:05"), 10, entity.VisibilityPublic)
	_, err := svc.RSVP(context.Background(), past.ID, "u1", "Guest One")
	require.NoError(t, err)
	future := seedEvent(events, organizer, futureDate(2*time.Hour), 10, entity.VisibilityPublic)
	unparseable := seedEvent(events, organizer, "whenever", 10, entity.VisibilityPublic)

	result, err := svc.ArchiveDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsMoved)
	assert.Equal(t, 1, result.UsersUpdated)

	_, err = events.Get(context.Background(), past.ID)
	assert.ErrorIs(t, err, errorz.NotFound)
	_, err = events.Get(context.Background(), future.ID)
	assert.NoError(t, err)
	_, err = events.Get(context.Background(), unparseable.ID)
	assert.NoError(t, err)

	hist, err := history.GetByOriginalEventID(context.Background(), past.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, hist.Status)
	assert.False(t, hist.RatingFinalized)
	assert.Equal(t, 0, hist.TotalRatings)

	stored, _ := users.Get(context.Background(), organizer.ID)
	assert.Empty(t, filterMirror(stored.CurrentFunctions.Data(), past.ID))
	pastFns := stored.PastFunctions.Data()
	require.Len(t, pastFns, 1)
	assert.Equal(t, past.ID, pastFns[0].OriginalEventID)
	assert.Equal(t, 1, pastFns[0].FinalAttendeeCount)

	assert.Equal(t, 1, notifier.count("rate"))
}

func TestArchiveCountsOnlySuccessfulMirrorWrites(t *testing.T) {
	svc, events, history, _, _, _ := newLifecycleFixture(testNow)
	ghost := &entity.User{ID: "00000000-0000-0000-0000-000000000002", Alias: "Ghost"}
	past := seedEvent(events, ghost, testNow.Add(-time.Hour).Format("2006-01-02T15:04:05"), 10, entity.VisibilityPublic)

	result, err := svc.ArchiveDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EventsMoved)
	assert.Equal(t, 0, result.UsersUpdated)

	_, err = history.GetByOriginalEventID(context.Background(), past.ID)
	assert.NoError(t, err)
}

func TestConcurrentSweepsArchiveExactlyOnce(t *testing.T) {
	svc, events, history, users, _, _ := newLifecycleFixture(testNow)
	organizer := seedUser(users, "Golden Phantom")
	past := seedEvent(events, organizer, testNow.Add(-time.Hour).Format("2006-01-02T15:04:05"), 10, entity.VisibilityPublic)

	first, err := svc.ArchiveDue(context.Background())
	require.NoError(t, err)
	second, err := svc.ArchiveForUser(context.Background(), organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.EventsMoved+second.EventsMoved)

	_, err = history.GetByOriginalEventID(context.Background(), past.ID)
	require.NoError(t, err)

	stored, _ := users.Get(context.Background(), organizer.ID)
	assert.Len(t, stored.PastFunctions.Data(), 1)
}

func filterMirror(fns []entity.CurrentFunction, eventID string) []entity.CurrentFunction {
	var out []entity.CurrentFunction
	for _, f := range fns {
		if f.EventID == eventID {
			out = append(out, f)
		}
	}
	return out
}
