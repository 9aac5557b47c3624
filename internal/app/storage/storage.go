/*
Package storage mirrors profile images into an S3-compatible bucket and hands out
presigned download URLs for them.
*/
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound is returned when an account has no mirrored avatar.
var ErrObjectNotFound = errors.New("object not found")

// Config locates the bucket. Region defaults to "auto", which S3-compatible services
// such as R2 and MinIO accept.
type Config struct {
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
}

// AvatarStorage is the object storage boundary for profile images.
type AvatarStorage interface {
	// PutAvatar uploads the decoded image for accountID, replacing any previous one.
	PutAvatar(ctx context.Context, accountID, contentType string, data []byte) error

	// DeleteAvatar removes the image for accountID. Deleting a missing object is not an error.
	DeleteAvatar(ctx context.Context, accountID string) error

	// PresignAvatar returns a time-limited download URL, or ErrObjectNotFound.
	PresignAvatar(ctx context.Context, accountID string, ttl time.Duration) (string, error)
}

// AvatarKey is the object key of an account's mirrored profile image.
func AvatarKey(accountID string) string {
	return "avatars/" + accountID
}
