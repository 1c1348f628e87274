package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/bcplughub/backend/internal/domain/common/errorz"
	"github.com/bcplughub/backend/internal/domain/dto"
	"github.com/bcplughub/backend/internal/domain/entity"
	"github.com/bcplughub/backend/pkg/logger/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type UserStorage interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, user *entity.User) (*entity.User, error)
	Count(ctx context.Context) (int64, error)
}

type textGenerator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

var aliasAdjectives = []string{"Velvet", "Neon", "Cosmic", "Shadow", "Electric", "Mystic", "Digital", "Urban", "Midnight", "Golden"}
var aliasNouns = []string{"Thunder", "Phantom", "Wolf", "Phoenix", "Viper", "Cipher", "Falcon", "Raven", "Tiger", "Dragon"}

// UserService manages accounts, aliases, and the per-user function mirrors.
type UserService struct {
	userStorage UserStorage
	textGen     textGenerator
	rng         *rand.Rand
	logger      *types.Logger
}

// NewUserService creates a UserService. textGen may be nil; alias
// generation then always uses the adjective+noun fallback driven by rng.
func NewUserService(storage UserStorage, textGen textGenerator, rng *rand.Rand, logger *types.Logger) *UserService {
	return &UserService{
		userStorage: storage,
		textGen:     textGen,
		rng:         rng,
		logger:      logger,
	}
}

// Register creates an account with a hashed password and assigns an alias.
func (s *UserService) Register(ctx context.Context, data dto.UserRegister) (*entity.User, error) {
	if data.Email == "" || data.Password == "" || data.Name == "" {
		return nil, errorz.Invalid
	}

	if _, err := s.userStorage.GetByEmail(ctx, data.Email); err == nil {
		return nil, errorz.Conflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:            data.Email,
		PasswordHash:     string(hash),
		Name:             data.Name,
		Alias:            s.GenerateAlias(ctx, data.Name),
		PersonalRating:   5,
		InstagramHandle:  data.InstagramHandle,
		CurrentFunctions: datatypes.NewJSONType([]entity.CurrentFunction{}),
		PastFunctions:    datatypes.NewJSONType([]entity.FunctionHistory{}),
	}

	return s.userStorage.Create(ctx, user)
}

// Login verifies credentials and returns the account.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.userStorage.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errorz.Forbidden
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.userStorage.Get(ctx, id)
}

// Directory lists all users sorted by alias, for the invite picker.
func (s *UserService) Directory(ctx context.Context) ([]dto.DirectoryEntry, error) {
	users, err := s.userStorage.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.DirectoryEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, dto.DirectoryEntry{
			UserID:         u.ID,
			Alias:          u.Alias,
			Email:          u.Email,
			PersonalRating: u.PersonalRating,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Alias < entries[j].Alias
	})
	return entries, nil
}

func (s *UserService) UpdateInstagram(ctx context.Context, userID, handle string, followers []string) (*entity.User, error) {
	user, err := s.userStorage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.InstagramHandle = handle
	user.InstagramFollowers = followers
	return s.userStorage.Update(ctx, user)
}

func (s *UserService) UpdateClubs(ctx context.Context, userID string, clubs []string) (*entity.User, error) {
	user, err := s.userStorage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ClubAffiliations = clubs
	return s.userStorage.Update(ctx, user)
}

// Functions returns a user's mirrors sorted for display: current ascending
// by date, past most recent first.
func (s *UserService) Functions(ctx context.Context, userID string) (*dto.UserFunctions, error) {
	user, err := s.userStorage.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := user.CurrentFunctions.Data()
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].Date < current[j].Date
	})
	past := user.PastFunctions.Data()
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].Date > past[j].Date
	})

	return &dto.UserFunctions{
		UserID:           user.ID,
		CurrentFunctions: current,
		PastFunctions:    past,
		PersonalRating:   user.PersonalRating,
	}, nil
}

// GenerateAlias asks the text collaborator for a two-word party alias and
// falls back to a random adjective+noun pair when it is unavailable.
func (s *UserService) GenerateAlias(ctx context.Context, name string) string {
	if s.textGen != nil {
		alias, err := s.textGen.Complete(ctx,
			"You generate short, cool two-word party aliases for college students. Reply with the alias only.",
			fmt.Sprintf("Generate an alias for a student named %s.", name),
		)
		if err == nil {
			alias = strings.TrimSpace(strings.Trim(alias, `"`))
			if alias != "" && len(alias) <= 40 {
				return alias
			}
		} else {
			s.logger.Debugf("alias generation failed, using fallback: %v", err)
		}
	}
	return fmt.Sprintf("%s %s",
		aliasAdjectives[s.rng.Intn(len(aliasAdjectives))],
		aliasNouns[s.rng.Intn(len(aliasNouns))],
	)
}
