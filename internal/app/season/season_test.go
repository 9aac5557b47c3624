package season

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	got      Type
	keywords []Keyword
	err      error
}

func (f *fakeStore) ListKeywords(_ context.Context, t Type) ([]Keyword, error) {
	f.got = t
	return f.keywords, f.err
}

func TestForMonth(t *testing.T) {
	want := map[time.Month]Type{
		time.January: Winter, time.February: Winter, time.March: Spring,
		time.April: Spring, time.May: Spring, time.June: Summer,
		time.July: Summer, time.August: Summer, time.September: Autumn,
		time.October: Autumn, time.November: Autumn, time.December: Winter,
	}
	for m, w := range want {
		got, err := ForMonth(m)
		require.NoError(t, err)
		assert.Equal(t, w, got, m.String())
	}

	_, err := ForMonth(13)
	assert.Error(t, err)
}

func TestService_ForMonth(t *testing.T) {
	store := &fakeStore{keywords: []Keyword{{KeywordName: "hanami", SeasonType: Spring, Month: 4}}}
	svc := NewService(store)

	ov, err := svc.ForMonth(context.Background(), time.April)
	require.NoError(t, err)
	assert.Equal(t, Spring, store.got)
	assert.Equal(t, "spring", ov.Name)
	assert.Equal(t, "🌸", ov.Icon)
	assert.Len(t, ov.Keywords, 1)
}

func TestService_ForMonthDefaultsToNow(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	svc.now = func() time.Time { return time.Date(2026, time.October, 14, 0, 0, 0, 0, time.UTC) }

	ov, err := svc.ForMonth(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, Autumn, ov.Season)
	assert.Equal(t, 10, ov.Month)
	assert.NotNil(t, ov.Keywords)
}

func TestService_StoreError(t *testing.T) {
	svc := NewService(&fakeStore{err: errors.New("boom")})

	_, err := svc.ForMonth(context.Background(), time.July)
	assert.ErrorContains(t, err, "boom")
}
