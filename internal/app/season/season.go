/*
Package season maps calendar months to seasons and serves the seasonal keyword catalogue
that outings are tagged with.
*/
package season

import (
	"context"
	"fmt"
	"time"
)

// Type is the stored season code ("1" spring through "4" winter).
type Type string

const (
	Spring Type = "1"
	Summer Type = "2"
	Autumn Type = "3"
	Winter Type = "4"
)

var names = map[Type]string{
	Spring: "spring",
	Summer: "summer",
	Autumn: "autumn",
	Winter: "winter",
}

var icons = map[Type]string{
	Spring: "🌸",
	Summer: "🌻",
	Autumn: "🍁",
	Winter: "⛄",
}

// Name returns the lowercase English season name.
func (t Type) Name() string { return names[t] }

// Icon returns the emoji used for the season.
func (t Type) Icon() string { return icons[t] }

// ForMonth returns the season of a month (1-12): March-May spring, June-August summer,
// September-November autumn, December-February winter.
func ForMonth(month time.Month) (Type, error) {
	switch {
	case month < time.January || month > time.December:
		return "", fmt.Errorf("month %d out of range", month)
	case month >= time.March && month <= time.May:
		return Spring, nil
	case month >= time.June && month <= time.August:
		return Summer, nil
	case month >= time.September && month <= time.November:
		return Autumn, nil
	default:
		return Winter, nil
	}
}

// Keyword is a seasonal tag row from the season_keywords table.
type Keyword struct {
	ID           string    `json:"id"`
	KeywordName  string    `json:"keyword_name"`
	SeasonType   Type      `json:"season_type"`
	Month        int       `json:"month"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store reads keywords.
type Store interface {
	ListKeywords(ctx context.Context, season Type) ([]Keyword, error)
}

// Overview is the season of a month with its keywords.
type Overview struct {
	Season   Type      `json:"season_type"`
	Name     string    `json:"name"`
	Icon     string    `json:"icon"`
	Month    int       `json:"month"`
	Keywords []Keyword `json:"keywords"`
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// ForMonth builds the overview for month; a zero month means the current month.
func (s *Service) ForMonth(ctx context.Context, month time.Month) (*Overview, error) {
	if month == 0 {
		month = s.now().Month()
	}

	t, err := ForMonth(month)
	if err != nil {
		return nil, err
	}

	keywords, err := s.store.ListKeywords(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	if keywords == nil {
		keywords = []Keyword{}
	}

	return &Overview{
		Season:   t,
		Name:     t.Name(),
		Icon:     t.Icon(),
		Month:    int(month),
		Keywords: keywords,
	}, nil
}
