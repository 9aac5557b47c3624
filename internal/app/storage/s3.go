package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Bucket is an AvatarStorage backed by one S3 bucket.
type Bucket struct {
	name     string
	api      *s3.Client
	presign  *s3.PresignClient
	uploader *manager.Uploader
}

var _ AvatarStorage = (*Bucket)(nil)

// New connects to the bucket described by cfg using static credentials and
// path-style addressing.
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load S3 configuration: %w", err)
	}

	api := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Bucket{
		name:     cfg.Bucket,
		api:      api,
		presign:  s3.NewPresignClient(api),
		uploader: manager.NewUploader(api),
	}, nil
}

func (b *Bucket) PutAvatar(ctx context.Context, accountID, contentType string, data []byte) error {
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.name),
		Key:          aws.String(AvatarKey(accountID)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("upload avatar %s: %w", accountID, err)
	}
	return nil
}

func (b *Bucket) DeleteAvatar(ctx context.Context, accountID string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(AvatarKey(accountID)),
	})
	if err != nil {
		return fmt.Errorf("delete avatar %s: %w", accountID, err)
	}
	return nil
}

// PresignAvatar checks the object exists before signing, so a missing avatar is
// reported here instead of as a 404 from the bucket later.
func (b *Bucket) PresignAvatar(ctx context.Context, accountID string, ttl time.Duration) (string, error) {
	key := AvatarKey(accountID)

	_, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(b.name), Key: aws.String(key)})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("stat avatar %s: %w", accountID, err)
	}

	req, err := b.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: aws.String(b.name), Key: aws.String(key)},
		s3.WithPresignExpires(ttl),
	)
	if err != nil {
		return "", fmt.Errorf("presign avatar %s: %w", accountID, err)
	}
	return req.URL, nil
}
