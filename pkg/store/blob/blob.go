// Package blob puts uploaded documents where the analysis backend can read
// them and returns the URL that goes into the create request.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type Kind string

const (
	KindNone  Kind = "none"
	KindS3    Kind = "s3"
	KindMinio Kind = "minio"
	KindAzure Kind = "azure"
)

var ErrNotConfigured = errors.New("no upload backend configured")

type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploader interface {
	// Upload stores the object and returns a URL the backend can fetch.
	Upload(ctx context.Context, obj Object) (string, error)
}

type Settings struct {
	Kind   Kind
	Bucket string // bucket or azure container
	Prefix string

	// s3
	Profile string
	Region  string

	// minio
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// azure
	AccountName string
	AccountKey  string // empty selects the default azure credential chain
}

func New(ctx context.Context, settings Settings) (Uploader, error) {
	if settings.Kind != KindNone && settings.Kind != "" && settings.Bucket == "" {
		return nil, fmt.Errorf("%s upload backend requires a bucket", settings.Kind)
	}

	switch settings.Kind {
	case KindNone, "":
		return nil, ErrNotConfigured
	case KindS3:
		return NewS3Uploader(ctx, settings)
	case KindMinio:
		return NewMinioUploader(ctx, settings)
	case KindAzure:
		return NewAzureUploader(settings)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", settings.Kind)
	}
}

// ObjectKey places every upload under its own random directory so two
// documents with the same name never collide.
func ObjectKey(prefix, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString(), name)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, " ", "%20")
	}
	return strings.Join(parts, "/")
}
