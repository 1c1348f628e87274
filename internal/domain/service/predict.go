package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
)

// fallbackRecommendation is the canned insight used when the text
// collaborator is unavailable.
const fallbackRecommendation = "Check out the events happening around campus in the next 24 hours!"

// venueScores ranks campus venues by popularity and accessibility.
var venueScores = map[string]float64{
	"gabelli hall":       0.9,
	"stayer hall":        0.85,
	"90 st. thomas more": 0.8,
	"walsh hall":         0.85,
	"ignacio hall":       0.75,
	"the mods":           0.7,
	"rubenstein hall":    0.75,
	"voute hall":         0.7,
	"welch hall":         0.65,
	"roncalli hall":      0.65,
}

// clubScores ranks clubs with a reliable turnout record.
var clubScores = map[string]float64{
	"student government": 0.9,
	"asian caucus":       0.85,
	"acapella":           0.85,
	"comedy club":        0.8,
}

// factorOrder fixes the summation order so scores do not wobble on
// floating-point association.
var factorOrder = []string{"timing", "location", "current_interest", "organization", "presentation"}

var factorWeights = map[string]float64{
	"timing":           0.25,
	"location":         0.20,
	"current_interest": 0.30,
	"organization":     0.15,
	"presentation":     0.10,
}

type predictEventStorage interface {
	GetPublicUpcoming(ctx context.Context) ([]entity.Event, error)
}

type insightsCache interface {
	Get(userID string) (*dto.EventInsights, error)
	Set(userID string, insights dto.EventInsights, expiration time.Duration)
}

// PredictService scores upcoming events with a transparent weighted
// heuristic and assembles the insights feed.
type PredictService struct {
	eventStorage predictEventStorage
	cache        insightsCache
	textGen      textGenerator
	cacheTTL     time.Duration
	logger       *types.Logger
	now          func() time.Time
}

// NewPredictService creates a PredictService. cache and textGen may be
// nil; now defaults to time.Now.
func NewPredictService(
	events predictEventStorage,
	cache insightsCache,
	textGen textGenerator,
	cacheTTL time.Duration,
	logger *types.Logger,
	now func() time.Time,
) *PredictService {
	if now == nil {
		now = time.Now
	}
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}
	return &PredictService{
		eventStorage: events,
		cache:        cache,
		textGen:      textGen,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          now,
	}
}

// Factors computes the five component scores, each in [0,1].
func Factors(event *entity.Event) map[string]float64 {
	return map[string]float64{
		"timing":           timingScore(event.Date),
		"location":         locationScore(event.Location),
		"current_interest": utilizationScore(event.RSVPCount, event.MaxCapacity),
		"organization":     organizationScore(event.ClubAffiliated, event.ClubName),
		"presentation":     presentationScore(event.EmojiVibe),
	}
}

// Predict scores one event on the 0-100 scale.
func Predict(event *entity.Event) dto.SuccessPrediction {
	factors := Factors(event)

	var weighted float64
	for _, name := range factorOrder {
		weighted += factors[name] * factorWeights[name]
	}
	score := int(weighted * 100)

	return dto.SuccessPrediction{
		EventID:   event.ID,
		EventName: event.Name,
		Score:     score,
		Reason:    reason(score, factors),
		Factors:   factors,
	}
}

// EventInsights scores the public upcoming events starting within the
// window, ranks them, and attaches a one-line recommendation. Results are
// cached per user for a short TTL.
func (s *PredictService) EventInsights(ctx context.Context, userID string, window time.Duration) (*dto.EventInsights, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}
	// the window is part of the cache key: a feed computed for one window
	// must not be served for another
	cacheKey := userID + ":" + window.String()
	if s.cache != nil {
		if cached, err := s.cache.Get(cacheKey); err == nil && cached != nil {
			return cached, nil
		}
	}

	events, err := s.eventStorage.GetPublicUpcoming(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	predictions := make([]dto.SuccessPrediction, 0, len(events))
	var ranked []entity.Event
	for i := range events {
		event := events[i]
		start, errParse := event.StartTime()
		if errParse == nil && (start.Before(now) || start.After(now.Add(window))) {
			continue
		}
		predictions = append(predictions, Predict(&event))
		ranked = append(ranked, event)
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})

	insights := dto.EventInsights{
		SuccessPredictions: predictions,
		Recommendation:     s.recommendation(ctx, ranked),
	}

	if s.cache != nil {
		s.cache.Set(cacheKey, insights, s.cacheTTL)
	}
	return &insights, nil
}

// recommendation asks the text collaborator for a short insight over the
// top events and degrades to the fixed fallback sentence.
func (s *PredictService) recommendation(ctx context.Context, events []entity.Event) string {
	if s.textGen == nil || len(events) == 0 {
		return fallbackRecommendation
	}

	top := events
	if len(top) > 5 {
		top = top[:5]
	}
	var summary strings.Builder
	for _, e := range top {
		fmt.Fprintf(&summary, "- %s at %s on %s (%d/%d RSVPs)\n", e.Name, e.Location, e.Date, e.RSVPCount, e.MaxCapacity)
	}

	insight, err := s.textGen.Complete(ctx,
		"You are a helpful assistant that analyzes campus events and provides brief, friendly insights to college students.",
		fmt.Sprintf("Analyze these upcoming campus events and provide a brief, friendly insight about the overall event landscape. Be encouraging and highlight interesting patterns or standout events.\n\nEvents:\n%s\nRespond in 1-2 sentences with actionable insights for students.", summary.String()),
	)
	if err != nil {
		s.logger.Debugf("insight generation failed, using fallback: %v", err)
		return fallbackRecommendation
	}
	return strings.TrimSpace(insight)
}

func timingScore(date string) float64 {
	start, err := entity.ParseEventDate(date)
	if err != nil {
		return 0.5
	}

	score := 0.0
	if wd := start.Weekday(); wd == time.Saturday || wd == time.Sunday {
		score += 0.25
	}

	switch hour := start.Hour(); {
	case hour >= 19 && hour <= 23:
		score += 0.3
	case hour >= 17:
		score += 0.2
	case hour >= 12:
		score += 0.1
	}

	if score > 1 {
		return 1
	}
	return score
}

// locationScore matches the venue table against the location string. The
// longest matching venue name wins, so "90 st. thomas more hall" does not
// fall through to a shorter coincidental match.
func locationScore(location string) float64 {
	lower := strings.ToLower(location)
	best, bestLen := 0.5, 0
	for venue, score := range venueScores {
		if strings.Contains(lower, venue) && len(venue) > bestLen {
			best, bestLen = score, len(venue)
		}
	}
	return best
}

// utilizationScore peaks at 60-80% capacity: full enough to feel alive,
// not so full it turns people away.
func utilizationScore(rsvpCount, maxCapacity int) float64 {
	if maxCapacity == 0 {
		return 0.5
	}

	utilization := float64(rsvpCount) / float64(maxCapacity)
	switch {
	case utilization >= 0.6 && utilization <= 0.8:
		return 1.0
	case utilization >= 0.4 && utilization < 0.6:
		return 0.8
	case utilization >= 0.3 && utilization < 0.4:
		return 0.6
	case utilization > 0.8 && utilization <= 0.95:
		return 0.7
	case utilization > 0.95:
		return 0.5
	default:
		return 0.3
	}
}

func organizationScore(clubAffiliated bool, clubName string) float64 {
	if !clubAffiliated {
		return 0.5
	}

	lower := strings.ToLower(clubName)
	best, bestLen := 0.7, 0
	for club, score := range clubScores {
		if strings.Contains(lower, club) && len(club) > bestLen {
			best, bestLen = score, len(club)
		}
	}
	return best
}

func presentationScore(emojiVibe []string) float64 {
	switch {
	case len(emojiVibe) >= 3:
		return 0.8
	case len(emojiVibe) == 2:
		return 0.7
	case len(emojiVibe) == 1:
		return 0.6
	default:
		return 0.5
	}
}

func reason(score int, factors map[string]float64) string {
	type factor struct {
		name  string
		score float64
	}
	sorted := make([]factor, 0, len(factors))
	for name, v := range factors {
		sorted = append(sorted, factor{name: name, score: v})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].score != sorted[j].score {
			return sorted[i].score > sorted[j].score
		}
		return sorted[i].name < sorted[j].name
	})

	pretty := func(f factor) string {
		return strings.ReplaceAll(f.name, "_", " ")
	}
	top := sorted[0]
	weak := sorted[len(sorted)-1]
	secondWeak := sorted[len(sorted)-2]

	switch {
	case score >= 80:
		return fmt.Sprintf("Strong %s and good overall setup", pretty(top))
	case score >= 60:
		return fmt.Sprintf("Good %s, but %s could be improved", pretty(top), pretty(weak))
	default:
		return fmt.Sprintf("Consider improving %s and %s", pretty(weak), pretty(secondWeak))
	}
}
