package insights

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

// Get returns the cached insights for a user. A cache miss or a stale
// payload comes back as (nil, nil) so the caller recomputes.
func (s *Storage) Get(userID string) (*dto.EventInsights, error) {
	insightsBytes, err := s.redis.Get(context.Background(), userID).Result()
	if err != nil {
		return nil, nil
	}

	var insights dto.EventInsights
	if err = json.Unmarshal([]byte(insightsBytes), &insights); err != nil {
		return nil, nil
	}

	return &insights, nil
}

func (s *Storage) Set(userID string, insights dto.EventInsights, expiration time.Duration) {
	insightsBytes, _ := json.Marshal(insights)
	s.redis.Set(context.Background(), userID, insightsBytes, expiration)
}

func (s *Storage) Clear(userID string) {
	s.redis.Del(context.Background(), userID)
}
