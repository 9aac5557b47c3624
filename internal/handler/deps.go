package handler

import (
	"context"
	"time"

	"seasnap/internal/app/account"
	"seasnap/internal/app/season"
	"seasnap/internal/app/storage"
	"seasnap/internal/configs"
	"seasnap/internal/pkg/auth/jwt"
	"seasnap/internal/pkg/limiter"
)

// AvatarURLDuration is how long a presigned avatar download URL stays valid.
const AvatarURLDuration = 5 * time.Minute

// AccountService is the account resolver used by the auth handlers.
type AccountService interface {
	ResolveByDeviceID(ctx context.Context, deviceID string) (*account.Account, error)
	Provision(ctx context.Context, deviceID string) (*account.Provisioned, error)
	UpdateProfile(ctx context.Context, deviceID string, u account.ProfileUpdate) (*account.Account, error)
}

// SeasonService serves the seasonal keyword overview.
type SeasonService interface {
	ForMonth(ctx context.Context, month time.Month) (*season.Overview, error)
}

type AppDeps struct {
	Config   *configs.AppConfig
	Accounts AccountService
	Seasons  SeasonService

	// Tokens verifies bearer tokens on /api; it must be the issuer Accounts signs with.
	// Nil leaves requests unauthenticated.
	Tokens *jwt.Issuer

	// Avatars is nil when object storage is not configured.
	Avatars storage.AvatarStorage

	// ProvisionLimiter throttles anonymous provisioning per client IP; nil disables it.
	ProvisionLimiter *limiter.PerIP
}
