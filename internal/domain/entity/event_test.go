package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseEventDate(t *testing.T) {
	withZone, err := ParseEventDate("2025-03-15T21:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC), withZone)

	offset, err := ParseEventDate("2025-03-15T21:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 15, 19, 0, 0, 0, time.UTC), offset)

	bare, err := ParseEventDate("2025-03-15T21:00:00")
	require.NoError(t, err)
	assert.Equal(t, withZone, bare)

	_, err = ParseEventDate("next friday")
	assert.Error(t, err)
}

func TestIsPastUnparseableNeverPast(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	past := Event{Date: "2025-03-15T11:00:00Z"}
	assert.True(t, past.IsPast(now))

	future := Event{Date: "2025-03-15T13:00:00Z"}
	assert.False(t, future.IsPast(now))

	exact := Event{Date: "2025-03-15T12:00:00Z"}
	assert.False(t, exact.IsPast(now))

	garbage := Event{Date: "???"}
	assert.False(t, garbage.IsPast(now))
}

func TestEligibleRatersUnionDeduped(t *testing.T) {
	hist := HistoricalEvent{
		Attendees: datatypes.NewJSONType([]Attendee{
			{UserID: "a"},
			{UserID: "b"},
		}),
		InvitedUsers: []string{"b", "c"},
	}

	assert.Equal(t, []string{"a", "b", "c"}, hist.EligibleRaters())
}

func TestHasAttendee(t *testing.T) {
	event := Event{Attendees: datatypes.NewJSONType([]Attendee{{UserID: "a"}})}
	assert.True(t, event.HasAttendee("a"))
	assert.False(t, event.HasAttendee("b"))
}
