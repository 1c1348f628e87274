package service

import (
	"context"
	"math"
	"time"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"gorm.io/datatypes"
)

// Rate records one eligible user's rating for an archived event. When the
// last eligible rater submits, the window finalizes immediately.
func (s *EventService) Rate(ctx context.Context, eventID string, data dto.RateFunction) (*entity.HistoricalEvent, error) {
	if data.Rating < 1 || data.Rating > 5 {
		return nil, errorz.Invalid
	}

	hist, err := s.historyStorage.GetByOriginalEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if hist.RatingFinalized {
		return nil, errorz.Expired
	}

	now := s.now().UTC()
	if start, errParse := hist.StartTime(); errParse == nil && now.After(start.Add(entity.RatingWindow)) {
		return nil, errorz.Expired
	}

	eligible := hist.EligibleRaters()
	if !containsID(eligible, data.UserID) {
		return nil, errorz.NotEligible
	}
	if hist.HasRating(data.UserID) {
		return nil, errorz.AlreadyRated
	}

	ratings := append(hist.Ratings.Data(), entity.Rating{
		UserID:   data.UserID,
		Rating:   data.Rating,
		Comment:  data.Comment,
		Attended: data.Attended,
		RatedAt:  now.Format(time.RFC3339),
	})
	hist.Ratings = datatypes.NewJSONType(ratings)
	hist.TotalRatings = len(ratings)
	hist.AverageRating = meanRating(ratings)

	updated, err := s.historyStorage.Update(ctx, hist)
	if err != nil {
		return nil, err
	}

	if len(ratings) >= len(eligible) {
		if err = s.finalizeRating(ctx, updated); err != nil {
			s.logger.Errorf("finalize of event %s failed: %v", updated.OriginalEventID, err)
		}
	}
	return updated, nil
}

// FinalizeDue closes rating windows that elapsed without every eligible
// user rating.
func (s *EventService) FinalizeDue(ctx context.Context) error {
	open, err := s.historyStorage.GetUnfinalized(ctx)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	for i := range open {
		hist := open[i]
		start, errParse := hist.StartTime()
		if errParse != nil || now.Before(start.Add(entity.RatingWindow)) {
			continue
		}
		if err = s.finalizeRating(ctx, &hist); err != nil {
			s.logger.Errorf("finalize of event %s failed: %v", hist.OriginalEventID, err)
		}
	}
	return nil
}

// finalizeRating closes the window: the final average folds into the
// organizer's personal rating as a weighted mean over their previously
// finalized functions, and the past-function mirror is annotated.
// Already-finalized events are left untouched.
func (s *EventService) finalizeRating(ctx context.Context, hist *entity.HistoricalEvent) error {
	if hist.RatingFinalized {
		return nil
	}

	if hist.TotalRatings > 0 {
		s.foldIntoOrganizerRating(ctx, hist)
	}

	now := s.now().UTC()
	hist.RatingFinalized = true
	hist.RatingFinalizedAt = &now
	_, err := s.historyStorage.Update(ctx, hist)
	return err
}

func (s *EventService) foldIntoOrganizerRating(ctx context.Context, hist *entity.HistoricalEvent) {
	organizer, err := s.userStorage.Get(ctx, hist.OrganizerID)
	if err != nil {
		s.logger.Errorf("finalize: organizer %s lookup failed: %v", hist.OrganizerID, err)
		return
	}

	past := organizer.PastFunctions.Data()
	finalized := 0
	for _, f := range past {
		if f.RatingFinalized {
			finalized++
		}
	}

	n := float64(finalized)
	organizer.PersonalRating = round1((organizer.PersonalRating*n + hist.AverageRating) / (n + 1))

	for i := range past {
		if past[i].OriginalEventID == hist.OriginalEventID {
			past[i].FinalRating = hist.AverageRating
			past[i].RatingFinalized = true
		}
	}
	organizer.PastFunctions = datatypes.NewJSONType(past)

	if _, err = s.userStorage.Update(ctx, organizer); err != nil {
		s.logger.Errorf("finalize: organizer %s update failed: %v", organizer.ID, err)
	}
}

func meanRating(ratings []entity.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
