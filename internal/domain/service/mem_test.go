package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func testLogger() *types.Logger {
	return &types.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

type memUserStorage struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserStorage() *memUserStorage {
	return &memUserStorage{users: make(map[string]*entity.User)}
}

func (s *memUserStorage) Create(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStorage) Get(_ context.Context, id string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, errorz.NotFound
	}
	return user, nil
}

func (s *memUserStorage) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errorz.NotFound
}

func (s *memUserStorage) GetAll(_ context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, *user)
	}
	return out, nil
}

func (s *memUserStorage) Update(_ context.Context, user *entity.User) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return user, nil
}

func (s *memUserStorage) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

type memEventStorage struct {
	mu     sync.Mutex
	events map[string]*entity.Event
}

func newMemEventStorage() *memEventStorage {
	return &memEventStorage{events: make(map[string]*entity.Event)}
}

func (s *memEventStorage) Create(_ context.Context, event *entity.Event) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *memEventStorage) Get(_ context.Context, id string) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, errorz.NotFound
	}
	return event, nil
}

func (s *memEventStorage) GetByStatus(_ context.Context, status string) ([]entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Event
	for _, event := range s.events {
		if event.Status == status {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (s *memEventStorage) GetPublicUpcoming(_ context.Context) ([]entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Event
	for _, event := range s.events {
		if event.Visibility == entity.VisibilityPublic && event.Status == entity.StatusUpcoming {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (s *memEventStorage) GetByOrganizer(_ context.Context, organizerID, status string) ([]entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Event
	for _, event := range s.events {
		if event.OrganizerID == organizerID && (status == "" || event.Status == status) {
			out = append(out, *event)
		}
	}
	return out, nil
}

func (s *memEventStorage) Update(_ context.Context, event *entity.Event) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return event, nil
}

func (s *memEventStorage) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return false, nil
	}
	delete(s.events, id)
	return true, nil
}

type memHistoryStorage struct {
	mu     sync.Mutex
	events map[string]*entity.HistoricalEvent
}

func newMemHistoryStorage() *memHistoryStorage {
	return &memHistoryStorage{events: make(map[string]*entity.HistoricalEvent)}
}

func (s *memHistoryStorage) Create(_ context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *memHistoryStorage) Get(_ context.Context, id string) (*entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return nil, errorz.NotFound
	}
	return event, nil
}

func (s *memHistoryStorage) GetByOriginalEventID(_ context.Context, eventID string) (*entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.OriginalEventID == eventID {
			return event, nil
		}
	}
	return nil, errorz.NotFound
}

func (s *memHistoryStorage) Update(_ context.Context, event *entity.HistoricalEvent) (*entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ID] = event
	return event, nil
}

func (s *memHistoryStorage) GetWithPagination(_ context.Context, limit, offset int) ([]entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.HistoricalEvent
	for _, event := range s.events {
		out = append(out, *event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *memHistoryStorage) GetUnfinalized(_ context.Context) ([]entity.HistoricalEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.HistoricalEvent
	for _, event := range s.events {
		if !event.RatingFinalized {
			out = append(out, *event)
		}
	}
	return out, nil
}

type notifierCall struct {
	kind   string
	userID string
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifierCall
}

func (f *fakeNotifier) record(kind, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notifierCall{kind: kind, userID: userID})
}

func (f *fakeNotifier) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (f *fakeNotifier) PrivateInvite(_ context.Context, userID string, _ *entity.Event, _, _ string) {
	f.record("invite", userID)
}

func (f *fakeNotifier) RSVPReceived(_ context.Context, event *entity.Event, _, _ string) {
	f.record("rsvp", event.OrganizerID)
}

func (f *fakeNotifier) RateFunction(_ context.Context, userID string, _ *entity.HistoricalEvent, _ time.Time) {
	f.record("rate", userID)
}

func (f *fakeNotifier) FunctionCancelled(_ context.Context, userID string, _ *entity.Event) {
	f.record("cancelled", userID)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func newLifecycleFixture(now time.Time) (*EventService, *memEventStorage, *memHistoryStorage, *memUserStorage, *fakeNotifier, *fixedClock) {
	events := newMemEventStorage()
	history := newMemHistoryStorage()
	users := newMemUserStorage()
	notifier := &fakeNotifier{}
	clock := &fixedClock{now: now}
	svc := NewEventService(events, history, users, notifier, nil, testLogger(), clock.Now)
	return svc, events, history, users, notifier, clock
}

func seedUser(users *memUserStorage, alias string) *entity.User {
	user, _ := users.Create(context.Background(), &entity.User{
		Email:          alias + "@bc.edu",
		PasswordHash:   "x",
		Name:           alias,
		Alias:          alias,
		PersonalRating: 5,
	})
	return user
}

func seedEvent(events *memEventStorage, organizer *entity.User, date string, capacity int, visibility string) *entity.Event {
	event, _ := events.Create(context.Background(), &entity.Event{
		Name:           "Test Function",
		Location:       "Walsh Hall",
		Date:           date,
		MaxCapacity:    capacity,
		Visibility:     visibility,
		OrganizerID:    organizer.ID,
		OrganizerAlias: organizer.Alias,
		Status:         entity.StatusUpcoming,
	})
	return event
}
