package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seasnap/internal/app/season"
)

const listSeasonKeywords = `SELECT id::text, keyword_name, season_type, month, display_order, created_at, updated_at
FROM season_keywords
WHERE season_type = $1
ORDER BY month, display_order, keyword_name`

// SeasonStore implements season.Store on PostgreSQL.
type SeasonStore struct {
	db DBTX
}

func NewSeasonStore(db DBTX) *SeasonStore {
	return &SeasonStore{db: db}
}

func (s *SeasonStore) ListKeywords(ctx context.Context, t season.Type) ([]season.Keyword, error) {
	rows, err := s.db.Query(ctx, listSeasonKeywords, string(t))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	keywords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (season.Keyword, error) {
		var k season.Keyword
		var st string
		err := row.Scan(&k.ID, &k.KeywordName, &st, &k.Month, &k.DisplayOrder, &k.CreatedAt, &k.UpdatedAt)
		k.SeasonType = season.Type(st)
		return k, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return keywords, nil
}
