package blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	azureblob "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/rs/zerolog"
)

type azureAPI interface {
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
	URL() string
}

type azureUploader struct {
	client    azureAPI
	container string
}

func NewAzureUploader(settings Settings) (Uploader, error) {
	if settings.AccountName == "" {
		return nil, fmt.Errorf("azure upload backend requires an account name")
	}
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", settings.AccountName)

	var (
		client *azblob.Client
		err    error
	)
	if settings.AccountKey != "" {
		credential, err := azblob.NewSharedKeyCredential(settings.AccountName, settings.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("invalid azure shared key: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure blob client: %w", err)
		}
	} else {
		var cred azcore.TokenCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get Azure credentials: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create azure blob client: %w", err)
		}
	}

	return &azureUploader{client: client, container: settings.Bucket}, nil
}

func (u *azureUploader) Upload(ctx context.Context, obj Object) (string, error) {
	_, err := u.client.UploadStream(ctx, u.container, obj.Key, obj.Body, &azblob.UploadStreamOptions{
		HTTPHeaders: &azureblob.HTTPHeaders{BlobContentType: to.Ptr(obj.ContentType)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload blob %s/%s: %w", u.container, obj.Key, err)
	}

	zerolog.Ctx(ctx).Debug().Str("container", u.container).Str("blob", obj.Key).Msg("uploaded document to azure")
	return strings.TrimRight(u.client.URL(), "/") + "/" + u.container + "/" + escapeKey(obj.Key), nil
}
