package blob

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

type mockMinio struct {
	mock.Mock
}

func (m *mockMinio) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, objectSize, opts.ContentType)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

type mockAzure struct {
	mock.Mock
}

func (m *mockAzure) UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error) {
	args := m.Called(ctx, containerName, blobName, *o.HTTPHeaders.BlobContentType)
	return azblob.UploadStreamResponse{}, args.Error(0)
}

func (m *mockAzure) URL() string {
	return "https://riskread.blob.core.windows.net/"
}

func pdfObject() Object {
	return Object{
		Key:         "uploads/1234/annual report.pdf",
		ContentType: "application/pdf",
		Size:        5,
		Body:        strings.NewReader("%PDF-"),
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/uploads/", `C:\docs\contract.pdf`)
	parts := strings.Split(key, "/")
	require.Len(t, parts, 3)
	assert.Equal(t, "uploads", parts[0])
	assert.Len(t, parts[1], 36)
	assert.Equal(t, "contract.pdf", parts[2])

	assert.NotEqual(t, ObjectKey("", "a.pdf"), ObjectKey("", "a.pdf"))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		u, err := New(ctx, Settings{Kind: KindNone})
		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Nil(t, u)
	})

	t.Run("missing bucket", func(t *testing.T) {
		u, err := New(ctx, Settings{Kind: KindS3})
		assert.Error(t, err)
		assert.Nil(t, u)
	})

	t.Run("unknown kind", func(t *testing.T) {
		u, err := New(ctx, Settings{Kind: "ftp", Bucket: "docs"})
		assert.Error(t, err)
		assert.Nil(t, u)
	})

	t.Run("azure without account", func(t *testing.T) {
		u, err := New(ctx, Settings{Kind: KindAzure, Bucket: "docs"})
		assert.Error(t, err)
		assert.Nil(t, u)
	})

	t.Run("minio without endpoint", func(t *testing.T) {
		u, err := New(ctx, Settings{Kind: KindMinio, Bucket: "docs"})
		assert.Error(t, err)
		assert.Nil(t, u)
	})
}

func TestS3Uploader_Upload(t *testing.T) {
	m := &mockS3{}
	m.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return *in.Bucket == "docs" && *in.Key == "uploads/1234/annual report.pdf" &&
			*in.ContentType == "application/pdf" && *in.ContentLength == 5
	})).Return(&s3.PutObjectOutput{}, nil)

	u := newS3Uploader(m, "docs", "eu-west-1")
	got, err := u.Upload(context.Background(), pdfObject())
	require.NoError(t, err)
	assert.Equal(t, "https://docs.s3.eu-west-1.amazonaws.com/uploads/1234/annual%20report.pdf", got)
	m.AssertExpectations(t)
}

func TestS3Uploader_UploadError(t *testing.T) {
	m := &mockS3{}
	m.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	u := newS3Uploader(m, "docs", "")
	_, err := u.Upload(context.Background(), pdfObject())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Equal(t, DefaultRegion, u.region)
}

func TestMinioUploader_Upload(t *testing.T) {
	m := &mockMinio{}
	m.On("PutObject", mock.Anything, "docs", "uploads/1234/annual report.pdf", int64(5), "application/pdf").
		Return(minio.UploadInfo{Key: "uploads/1234/annual report.pdf", Size: 5}, nil)

	endpoint, err := url.Parse("http://localhost:9000")
	require.NoError(t, err)
	u := &minioUploader{client: m, endpoint: endpoint, bucket: "docs"}

	got, err := u.Upload(context.Background(), pdfObject())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/docs/uploads/1234/annual%20report.pdf", got)
	m.AssertExpectations(t)
}

func TestAzureUploader_Upload(t *testing.T) {
	m := &mockAzure{}
	m.On("UploadStream", mock.Anything, "documents", "uploads/1234/annual report.pdf", "application/pdf").Return(nil)

	u := &azureUploader{client: m, container: "documents"}
	got, err := u.Upload(context.Background(), pdfObject())
	require.NoError(t, err)
	assert.Equal(t, "https://riskread.blob.core.windows.net/documents/uploads/1234/annual%20report.pdf", got)
	m.AssertExpectations(t)
}

func TestAzureUploader_UploadError(t *testing.T) {
	m := &mockAzure{}
	m.On("UploadStream", mock.Anything, "documents", mock.Anything, mock.Anything).Return(errors.New("container not found"))

	u := &azureUploader{client: m, container: "documents"}
	_, err := u.Upload(context.Background(), pdfObject())
	assert.ErrorContains(t, err, "container not found")
}
