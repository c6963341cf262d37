package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields = errors.New("username, display name and password are required")
	// ErrInvalidCredentials is returned for unknown usernames and wrong
	// passwords alike so login failures never reveal which half of the
	// pair was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	bcryptCost = 10

	directoryCacheKey = "cache:users"
	directoryCacheTTL = 30 * time.Second
)

// Store is what the service needs from the repository.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

type Service struct {
	store Store
	cache *redis.Client // nil disables directory caching
	log   *logrus.Logger
}

func NewService(store Store, cache *redis.Client, log *logrus.Logger) *Service {
	return &Service{store: store, cache: cache, log: log}
}

// Register hashes the raw password and creates the user; the raw
// password is never persisted.
func (s *Service) Register(ctx context.Context, username, displayName, bio, profilePicture, password string) (*User, error) {
	if username == "" || displayName == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:       username,
		DisplayName:    displayName,
		Bio:            bio,
		ProfilePicture: profilePicture,
		PasswordHash:   string(hash),
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.invalidateDirectory(ctx)
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// ListOthers returns the user directory without the caller. The full
// directory is what gets cached, so the filter runs per request rather
// than per cache entry.
func (s *Service) ListOthers(ctx context.Context, callerID int) ([]User, error) {
	users, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	others := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID == callerID {
			continue
		}
		others = append(others, u)
	}
	return others, nil
}

func (s *Service) directory(ctx context.Context) ([]User, error) {
	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, directoryCacheKey).Result(); err == nil {
			var users []User
			if err := json.Unmarshal([]byte(payload), &users); err == nil {
				return users, nil
			}
			s.log.Warnf("discarding unreadable user directory cache entry")
		}
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// password hashes carry json:"-" and never enter redis
		if payload, err := json.Marshal(users); err == nil {
			if err := s.cache.Set(ctx, directoryCacheKey, payload, directoryCacheTTL).Err(); err != nil {
				s.log.Warnf("cache user directory: %v", err)
			}
		}
	}
	return users, nil
}

func (s *Service) invalidateDirectory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, directoryCacheKey).Err(); err != nil {
		s.log.Warnf("invalidate user directory cache: %v", err)
	}
}
