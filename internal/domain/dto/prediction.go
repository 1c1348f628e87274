package dto

import "github.com/bcplughub/backend/internal/domain/entity"

// SuccessPrediction is the heuristic scorer's verdict for one event.
type SuccessPrediction struct {
	EventID   string             `json:"eventId"`
	EventName string             `json:"eventName"`
	Score     int                `json:"score"`
	Reason    string             `json:"reason"`
	Factors   map[string]float64 `json:"factors"`
}

// EventInsights bundles scored predictions (descending by score) with a
// short natural-language recommendation about the lineup.
type EventInsights struct {
	SuccessPredictions []SuccessPrediction `json:"successPredictions"`
	Recommendation     string              `json:"recommendation"`
}

// GoatedPrediction is the learned scorer's pick for the most promising
// upcoming event.
type GoatedPrediction struct {
	Event          *entity.Event `json:"goated_event"`
	GoatedScore    int           `json:"goated_score"`
	PredictedRSVPs int           `json:"predicted_rsvps"`
	Confidence     string        `json:"confidence"`
}
