package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"seasnap/internal/pkg/logx"
	"seasnap/internal/pkg/randx"
)

// Store is the persistence boundary for accounts.
type Store interface {
	// GetByDeviceID returns the account bound to deviceID, or ErrNotFound.
	GetByDeviceID(ctx context.Context, deviceID string) (*Account, error)

	// CreateAnonymous creates the anonymous auth identity and the account row bound to
	// deviceID as one transaction. It returns ErrDeviceTaken if deviceID is already bound;
	// on any error nothing is left behind.
	CreateAnonymous(ctx context.Context, deviceID string) (*Account, error)

	// UpdateProfile applies u to the account and records actorID as the updater.
	UpdateProfile(ctx context.Context, accountID string, u ProfileUpdate, actorID string) (*Account, error)
}

// AvatarMirror copies encoded profile images into object storage.
type AvatarMirror interface {
	PutAvatar(ctx context.Context, accountID, contentType string, data []byte) error
	DeleteAvatar(ctx context.Context, accountID string) error
}

// provisionTimeout bounds a shared provisioning call once it no longer follows the
// caller that started it.
const provisionTimeout = 10 * time.Second

// TokenFunc issues an access token for a freshly provisioned account.
type TokenFunc func(a *Account) (string, error)

// Provisioned is the result of provisioning: the bound account and an optional access token.
type Provisioned struct {
	Account     *Account
	AccessToken string
}

// Service resolves, provisions and updates accounts keyed by device identifier.
type Service struct {
	store  Store
	token  TokenFunc
	mirror AvatarMirror

	// provisioning coalesces concurrent Provision calls for one identifier in this process.
	provisioning singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTokenIssuer attaches an access token issuer used by Provision.
func WithTokenIssuer(fn TokenFunc) Option {
	return func(s *Service) { s.token = fn }
}

// WithAvatarMirror enables mirroring of data URL profile images into object storage.
func WithAvatarMirror(m AvatarMirror) Option {
	return func(s *Service) { s.mirror = m }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveByDeviceID looks up the account bound to deviceID.
// A missing row is reported as ErrNotFound; any other failure is a wrapped backend error.
func (s *Service) ResolveByDeviceID(ctx context.Context, deviceID string) (*Account, error) {
	if !randx.IsValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}

	acc, err := s.store.GetByDeviceID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve account: %w", err)
	}

	return acc, nil
}

// Provision creates an anonymous account bound to deviceID, generating an identifier when
// deviceID is empty. Provisioning an identifier that is already bound returns the existing
// account, so concurrent provisioning for one identifier yields exactly one account.
func (s *Service) Provision(ctx context.Context, deviceID string) (*Provisioned, error) {
	if deviceID == "" {
		deviceID = randx.DeviceID()
	} else if !randx.IsValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}

	// The shared call outlives any single caller; each caller stops waiting on its own ctx.
	ch := s.provisioning.DoChan(deviceID, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), provisionTimeout)
		defer cancel()
		return s.createOrResolve(ctx, deviceID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, fmt.Errorf("provision account: %w", ctx.Err())
	}
	if res.Err != nil {
		return nil, fmt.Errorf("provision account: %w", res.Err)
	}

	acc := res.Val.(*Account).Clone()
	out := &Provisioned{Account: acc}

	if s.token != nil {
		token, err := s.token(acc)
		if err != nil {
			logx.Ctx(ctx).Error().Err(err).Str("account_id", acc.ID).Msg("Access token issuance failed, omitting token")
		} else {
			out.AccessToken = token
		}
	}

	return out, nil
}

// createOrResolve inserts the account, falling back to the existing row when another
// writer bound deviceID first.
func (s *Service) createOrResolve(ctx context.Context, deviceID string) (*Account, error) {
	acc, err := s.store.CreateAnonymous(ctx, deviceID)
	if errors.Is(err, ErrDeviceTaken) {
		logx.Ctx(ctx).Info().Msg("Device already provisioned, returning existing account")
		return s.store.GetByDeviceID(ctx, deviceID)
	}
	return acc, err
}

// UpdateProfile validates u, then updates the account bound to deviceID.
// Validation failures return *ValidationError before any store access; an unknown
// device identifier returns ErrNotFound rather than creating an account.
func (s *Service) UpdateProfile(ctx context.Context, deviceID string, u ProfileUpdate) (*Account, error) {
	if !randx.IsValidDeviceID(deviceID) {
		return nil, ErrInvalidDeviceID
	}

	if err := ValidateProfile(u); err != nil {
		return nil, err
	}

	existing, err := s.ResolveByDeviceID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if u.Empty() {
		return existing, nil
	}

	updated, err := s.store.UpdateProfile(ctx, existing.ID, u, existing.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	if u.Image != nil {
		s.syncAvatar(ctx, updated.ID, *u.Image)
	}

	return updated, nil
}

// syncAvatar keeps the object storage copy in line with the stored image.
// Failures are logged; the account row stays the source of truth.
func (s *Service) syncAvatar(ctx context.Context, accountID, image string) {
	if s.mirror == nil {
		return
	}

	log := logx.Ctx(ctx)

	if !IsDataURL(image) {
		if err := s.mirror.DeleteAvatar(ctx, accountID); err != nil {
			log.Warn().Err(err).Str("account_id", accountID).Msg("Failed to delete mirrored avatar")
		}
		return
	}

	enc, err := ParseDataURL(image)
	if err != nil {
		return
	}

	data, err := enc.Decode()
	if err != nil {
		log.Warn().Err(err).Str("account_id", accountID).Msg("Skipping avatar mirror")
		return
	}

	if err := s.mirror.PutAvatar(ctx, accountID, enc.MIMEType, data); err != nil {
		log.Warn().Err(err).Str("account_id", accountID).Msg("Failed to mirror avatar")
	}
}
