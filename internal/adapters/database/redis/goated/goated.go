package goated

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/redis/go-redis/v9"
)

type Storage struct {
	redis *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{
		redis: client,
	}
}

func (s *Storage) Get(eventID string) (*dto.GoatedPrediction, error) {
	predictionBytes, err := s.redis.Get(context.Background(), eventID).Result()
	if err != nil {
		return nil, nil
	}

	var prediction dto.GoatedPrediction
	if err = json.Unmarshal([]byte(predictionBytes), &prediction); err != nil {
		return nil, nil
	}

	return &prediction, nil
}

func (s *Storage) Set(eventID string, prediction dto.GoatedPrediction, expiration time.Duration) {
	predictionBytes, _ := json.Marshal(prediction)
	s.redis.Set(context.Background(), eventID, predictionBytes, expiration)
}

func (s *Storage) Clear(eventID string) {
	s.redis.Del(context.Background(), eventID)
}
