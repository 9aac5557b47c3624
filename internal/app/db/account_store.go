package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"seasnap/internal/app/account"
)

const accountColumns = `id::text, device_id, user_name, profile_image, created_by::text, created_at, updated_by::text, updated_at`

const getAccountByDeviceID = `SELECT ` + accountColumns + `
FROM users
WHERE device_id = $1`

const insertAuthIdentity = `INSERT INTO auth_identities (provider)
VALUES ('anonymous')
RETURNING id::text`

const insertAccount = `INSERT INTO users (id, device_id, created_by, updated_by)
VALUES ($1, $2, $1, $1)
RETURNING ` + accountColumns

const updateAccountProfile = `UPDATE users SET
    user_name     = CASE WHEN $2::boolean THEN NULLIF($3::text, '') ELSE user_name END,
    profile_image = CASE WHEN $4::boolean THEN NULLIF($5::text, '') ELSE profile_image END,
    updated_by    = $6,
    updated_at    = now()
WHERE id = $1
RETURNING ` + accountColumns

// AccountStore implements account.Store on PostgreSQL.
type AccountStore struct {
	db   DBTX
	inTx TxRunner
}

func NewAccountStore(db DBTX, inTx TxRunner) *AccountStore {
	return &AccountStore{db: db, inTx: inTx}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	a := &account.Account{}
	err := row.Scan(
		&a.ID,
		&a.DeviceID,
		&a.UserName,
		&a.ProfileImage,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedBy,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AccountStore) GetByDeviceID(ctx context.Context, deviceID string) (*account.Account, error) {
	a, err := scanAccount(s.db.QueryRow(ctx, getAccountByDeviceID, deviceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

// CreateAnonymous inserts the auth identity and the users row in one transaction,
// so a failed row insert never leaves an orphaned identity behind.
func (s *AccountStore) CreateAnonymous(ctx context.Context, deviceID string) (*account.Account, error) {
	var created *account.Account

	err := s.inTx(ctx, func(tx DBTX) error {
		var identityID string
		if err := tx.QueryRow(ctx, insertAuthIdentity).Scan(&identityID); err != nil {
			return fmt.Errorf("create auth identity: %w", err)
		}

		a, err := scanAccount(tx.QueryRow(ctx, insertAccount, identityID, deviceID))
		if err != nil {
			return fmt.Errorf("insert user row: %w", err)
		}

		created = a
		return nil
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, account.ErrDeviceTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

func (s *AccountStore) UpdateProfile(ctx context.Context, accountID string, u account.ProfileUpdate, actorID string) (*account.Account, error) {
	var name, image string
	if u.DisplayName != nil {
		name = *u.DisplayName
	}
	if u.Image != nil {
		image = *u.Image
	}

	a, err := scanAccount(s.db.QueryRow(ctx, updateAccountProfile,
		accountID,
		u.DisplayName != nil, name,
		u.Image != nil, image,
		actorID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrNotFound
		}
		if verr := asValidationError(err); verr != nil {
			return nil, verr
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}
