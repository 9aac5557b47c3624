/*
Package memstore is a process-local implementation of the account and season stores.

The server uses it when DATABASE_URL is "memory", for local development without PostgreSQL.
It enforces the same unique device identifier rule as the users table.
*/
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"seasnap/internal/app/account"
	"seasnap/internal/app/season"
)

// DSN is the DATABASE_URL value that selects the in-memory store.
const DSN = "memory"

type Store struct {
	mu       sync.RWMutex
	byDevice map[string]*account.Account
	byID     map[string]*account.Account
	keywords []season.Keyword
	now      func() time.Time
}

func New() *Store {
	s := &Store{
		byDevice: make(map[string]*account.Account),
		byID:     make(map[string]*account.Account),
		now:      time.Now,
	}
	s.keywords = defaultKeywords(s.now())
	return s
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (s *Store) GetByDeviceID(_ context.Context, deviceID string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byDevice[deviceID]
	if !ok {
		return nil, account.ErrNotFound
	}
	return a.Clone(), nil
}

func (s *Store) CreateAnonymous(_ context.Context, deviceID string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byDevice[deviceID]; ok {
		return nil, account.ErrDeviceTaken
	}

	id := uuid.New().String()
	now := s.now()
	a := &account.Account{
		ID:        id,
		DeviceID:  deviceID,
		CreatedBy: &id,
		CreatedAt: now,
		UpdatedBy: &id,
		UpdatedAt: now,
	}
	s.byDevice[deviceID] = a
	s.byID[id] = a

	return a.Clone(), nil
}

func (s *Store) UpdateProfile(_ context.Context, accountID string, u account.ProfileUpdate, actorID string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[accountID]
	if !ok {
		return nil, account.ErrNotFound
	}

	if u.DisplayName != nil {
		a.UserName = nullable(*u.DisplayName)
	}
	if u.Image != nil {
		a.ProfileImage = nullable(*u.Image)
	}
	a.UpdatedBy = &actorID
	a.UpdatedAt = s.now()

	return a.Clone(), nil
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) ListKeywords(_ context.Context, t season.Type) ([]season.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []season.Keyword{}
	for _, k := range s.keywords {
		if k.SeasonType == t {
			out = append(out, k)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].DisplayOrder < out[j].DisplayOrder
	})

	return out, nil
}

func defaultKeywords(now time.Time) []season.Keyword {
	seed := []struct {
		name  string
		t     season.Type
		month int
		order int
	}{
		{"梅", season.Spring, 3, 1},
		{"桜", season.Spring, 4, 1},
		{"菜の花", season.Spring, 4, 2},
		{"藤", season.Spring, 5, 1},
		{"紫陽花", season.Summer, 6, 1},
		{"花火", season.Summer, 7, 1},
		{"海", season.Summer, 8, 1},
		{"向日葵", season.Summer, 8, 2},
		{"月見", season.Autumn, 9, 1},
		{"紅葉", season.Autumn, 10, 1},
		{"銀杏", season.Autumn, 11, 1},
		{"イルミネーション", season.Winter, 12, 1},
		{"初詣", season.Winter, 1, 1},
		{"雪景色", season.Winter, 2, 1},
	}

	out := make([]season.Keyword, 0, len(seed))
	for _, k := range seed {
		out = append(out, season.Keyword{
			ID:           uuid.New().String(),
			KeywordName:  k.name,
			SeasonType:   k.t,
			Month:        k.month,
			DisplayOrder: k.order,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return out
}
