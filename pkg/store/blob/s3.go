package blob

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Uploader struct {
	client s3API
	bucket string
	region string
}

func NewS3Uploader(ctx context.Context, settings Settings) (Uploader, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if settings.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(settings.Profile))
	}
	if settings.Region != "" {
		opts = append(opts, config.WithRegion(settings.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return newS3Uploader(s3.NewFromConfig(awsCfg), settings.Bucket, awsCfg.Region), nil
}

func newS3Uploader(client s3API, bucket, region string) *s3Uploader {
	if region == "" {
		region = DefaultRegion
	}
	return &s3Uploader{client: client, bucket: bucket, region: region}
}

func (u *s3Uploader) Upload(ctx context.Context, obj Object) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(u.bucket),
		Key:           awssdk.String(obj.Key),
		Body:          obj.Body,
		ContentType:   awssdk.String(obj.ContentType),
		ContentLength: awssdk.Int64(obj.Size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put s3://%s/%s: %w", u.bucket, obj.Key, err)
	}

	zerolog.Ctx(ctx).Debug().Str("bucket", u.bucket).Str("key", obj.Key).Msg("uploaded document to s3")
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, escapeKey(obj.Key)), nil
}
