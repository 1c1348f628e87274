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

type goatedMemCache struct {
	entries map[string]*dto.GoatedPrediction
}

func (c *goatedMemCache) Get(key string) (*dto.GoatedPrediction, error) {
	return c.entries[key], nil
}

func (c *goatedMemCache) Set(key string, prediction dto.GoatedPrediction, _ time.Duration) {
	if c.entries == nil {
		c.entries = make(map[string]*dto.GoatedPrediction)
	}
	c.entries[key] = &prediction
}

func goatedFixture(t *testing.T, seed int64) (*GoatedService, *memEventStorage) {
	t.Helper()
	events := newMemEventStorage()
	clock := &fixedClock{now: testNow}
	svc := NewGoatedService(events, nil, seed, time.Minute, testLogger(), clock.Now)
	return svc, events
}

func addUpcoming(events *memEventStorage, id, location string, start time.Time, capacity, rsvps int, club bool) {
	events.Create(context.Background(), &entity.Event{
		ID:             id,
		Name:           id,
		Location:       location,
		Date:           start.Format("2006-01-02T15:04:05") + "Z",
		MaxCapacity:    capacity,
		RSVPCount:      rsvps,
		Visibility:     entity.VisibilityPublic,
		Status:         entity.StatusUpcoming,
		ClubAffiliated: club,
	})
}

func TestGoatedPredictIsDeterministicForSeed(t *testing.T) {
	first, eventsA := goatedFixture(t, 7)
	second, eventsB := goatedFixture(t, 7)
	for _, events := range []*memEventStorage{eventsA, eventsB} {
		addUpcoming(events, "a", "Walsh Hall", testNow.Add(8*time.Hour), 80, 30, true)
		addUpcoming(events, "b", "off campus", testNow.Add(3*time.Hour), 80, 5, false)
	}

	p1, err := first.Predict(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	p2, err := second.Predict(context.Background(), 24*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, p1.Event.ID, p2.Event.ID)
	assert.Equal(t, p1.GoatedScore, p2.GoatedScore)
	assert.Equal(t, p1.PredictedRSVPs, p2.PredictedRSVPs)
}

func TestGoatedScoreBoundsAndConfidence(t *testing.T) {
	svc, events := goatedFixture(t, 7)
	addUpcoming(events, "a", "Gabelli Hall", testNow.Add(9*time.Hour), 40, 30, true)

	prediction, err := svc.Predict(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, prediction.GoatedScore, 0)
	assert.LessOrEqual(t, prediction.GoatedScore, 100)
	assert.GreaterOrEqual(t, prediction.PredictedRSVPs, 0)
	assert.Contains(t, []string{"High", "Medium", "Low"}, prediction.Confidence)
	assert.Equal(t, confidence(prediction.GoatedScore), prediction.Confidence)
}

func TestConfidenceBands(t *testing.T) {
	assert.Equal(t, "High", confidence(70))
	assert.Equal(t, "Medium", confidence(69))
	assert.Equal(t, "Medium", confidence(40))
	assert.Equal(t, "Low", confidence(39))
}

func TestGoatedSkipsEventsOutsideWindow(t *testing.T) {
	svc, events := goatedFixture(t, 7)
	addUpcoming(events, "past", "Walsh Hall", testNow.Add(-time.Hour), 80, 40, true)
	addUpcoming(events, "far", "Walsh Hall", testNow.Add(72*time.Hour), 80, 40, true)

	_, err := svc.Predict(context.Background(), 24*time.Hour)
	assert.ErrorIs(t, err, errorz.NotFound)
}

func TestGoatedCacheIsWindowScoped(t *testing.T) {
	events := newMemEventStorage()
	clock := &fixedClock{now: testNow}
	cache := &goatedMemCache{}
	svc := NewGoatedService(events, cache, 7, time.Minute, testLogger(), clock.Now)

	// starts 10h out: inside a 24h window, outside a 1h window
	addUpcoming(events, "far", "Walsh Hall", testNow.Add(10*time.Hour), 80, 30, true)

	wide, err := svc.Predict(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "far", wide.Event.ID)

	_, err = svc.Predict(context.Background(), time.Hour)
	assert.ErrorIs(t, err, errorz.NotFound)
}

func TestGoatedFavorsStackedSignals(t *testing.T) {
	svc, events := goatedFixture(t, 7)
	// Saturday 21:00 club night at a hot venue vs a weekday noon open slot
	addUpcoming(events, "hot", "Gabelli Hall", time.Date(2025, 3, 15, 21, 0, 0, 0, time.UTC), 100, 40, true)
	addUpcoming(events, "cold", "parking lot", time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC), 100, 2, false)

	prediction, err := svc.Predict(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "hot", prediction.Event.ID)
}
