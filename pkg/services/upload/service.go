package upload

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/store/blob"
)

const (
	MsgUploadFailed   = "Upload failed"
	MsgStarted        = "Analysis started successfully!"
	MsgCreationFailed = "Analysis creation failed"
	MsgFailedToStart  = "Failed to start analysis"
)

type Creator interface {
	Create(ctx context.Context, input domain.CreateAnalysisInput) (domain.Analysis, error)
}

type Request struct {
	Path string
	// FileURL skips the blob upload when the document is already reachable.
	FileURL string
}

type Service struct {
	api      Creator
	uploader blob.Uploader
	notifier notify.Notifier
	prefix   string
}

// NewService wires the gate. uploader may be nil, in which case every request
// must carry a FileURL.
func NewService(api Creator, uploader blob.Uploader, notifier notify.Notifier, prefix string) *Service {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Service{api: api, uploader: uploader, notifier: notifier, prefix: prefix}
}

func (s *Service) Submit(ctx context.Context, req Request) (domain.Analysis, error) {
	logger := zerolog.Ctx(ctx)

	file, err := ValidatePath(req.Path)
	if err != nil {
		logger.Debug().Err(err).Str("path", req.Path).Msg("file rejected")
		notify.Error(s.notifier, rejectionMessage(err))
		return domain.Analysis{}, err
	}

	fileURL := req.FileURL
	if fileURL == "" {
		fileURL, err = s.upload(ctx, file)
		if err != nil {
			logger.Error().Err(err).Str("file", file.Name).Msg("upload failed")
			notify.Error(s.notifier, MsgUploadFailed)
			return domain.Analysis{}, err
		}
	}

	analysis, err := s.api.Create(ctx, domain.CreateAnalysisInput{
		FileName: file.Name,
		FileType: file.Type,
		FileSize: file.Size,
		FileURL:  fileURL,
	})
	if err != nil {
		logger.Error().Err(err).Str("file", file.Name).Msg("failed to create analysis")
		if domain.IsKind(err, domain.KindCreation) {
			notify.Error(s.notifier, MsgCreationFailed)
		} else {
			notify.Error(s.notifier, MsgFailedToStart)
		}
		return domain.Analysis{}, err
	}

	logger.Info().Str("analysis_id", analysis.ID).Str("file", file.Name).Msg("analysis created")
	notify.Success(s.notifier, MsgStarted)
	return analysis, nil
}

func (s *Service) upload(ctx context.Context, file File) (string, error) {
	if s.uploader == nil {
		return "", domain.NewError(domain.KindValidation, MsgFailed,
			fmt.Errorf("%w: pass --file-url or configure upload.backend", blob.ErrNotConfigured))
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return "", domain.NewError(domain.KindValidation, MsgFailed, err)
	}
	defer f.Close()

	url, err := s.uploader.Upload(ctx, blob.Object{
		Key:         blob.ObjectKey(s.prefix, file.Name),
		ContentType: file.MIMEType,
		Size:        file.Size,
		Body:        f,
	})
	if err != nil {
		return "", domain.NewError(domain.KindStorage, MsgUploadFailed, err)
	}
	return url, nil
}

func rejectionMessage(err error) string {
	if code, ok := CodeOf(err); ok {
		return rejectionMessages[code]
	}
	return MsgFailed
}

// IsRejection reports whether err came from the upload gate rather than from
// the upload or the API.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
