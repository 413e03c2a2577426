package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type minioUploader struct {
	client   minioAPI
	endpoint *url.URL
	bucket   string
}

func NewMinioUploader(ctx context.Context, settings Settings) (Uploader, error) {
	if settings.Endpoint == "" {
		return nil, fmt.Errorf("minio upload backend requires an endpoint")
	}

	cli, err := minio.New(settings.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(settings.AccessKey, settings.SecretKey, ""),
		Secure: settings.UseSSL,
		Region: settings.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, settings.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", settings.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, settings.Bucket, minio.MakeBucketOptions{Region: settings.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", settings.Bucket, err)
		}
	}

	return &minioUploader{client: cli, endpoint: cli.EndpointURL(), bucket: settings.Bucket}, nil
}

func (u *minioUploader) Upload(ctx context.Context, obj Object) (string, error) {
	info, err := u.client.PutObject(ctx, u.bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType: obj.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s/%s: %w", u.bucket, obj.Key, err)
	}

	zerolog.Ctx(ctx).Debug().Str("bucket", u.bucket).Str("key", info.Key).Int64("size", info.Size).Msg("uploaded document to minio")
	return fmt.Sprintf("%s://%s/%s/%s", u.endpoint.Scheme, u.endpoint.Host, u.bucket, escapeKey(obj.Key)), nil
}
