package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/de-tools/riskread/pkg/models/domain"
)

const MaxFileSize = 10 * 1024 * 1024

type RejectionCode string

const (
	CodeTooLarge    RejectionCode = "file-too-large"
	CodeInvalidType RejectionCode = "file-invalid-type"
	CodeFailed      RejectionCode = "upload-failed"
)

const (
	MsgTooLarge    = "File size exceeds the maximum limit of 10MB"
	MsgInvalidType = "File type not supported. Please upload PDF, DOCX, XLSX, or TXT files."
	MsgFailed      = "File upload failed. Please try again."
)

var rejectionMessages = map[RejectionCode]string{
	CodeTooLarge:    MsgTooLarge,
	CodeInvalidType: MsgInvalidType,
	CodeFailed:      MsgFailed,
}

// Rejection is returned when a file does not pass the upload gate. Its
// message is the fixed user-facing text for the code.
type Rejection struct {
	Code  RejectionCode
	Cause error
}

func (r *Rejection) Error() string {
	return rejectionMessages[r.Code]
}

func (r *Rejection) Unwrap() error {
	return r.Cause
}

func reject(code RejectionCode, cause error) error {
	return domain.NewError(domain.KindValidation, rejectionMessages[code], &Rejection{Code: code, Cause: cause})
}

// CodeOf returns the rejection code carried by err, if any.
func CodeOf(err error) (RejectionCode, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Code, true
	}
	return "", false
}

type acceptedType struct {
	fileType domain.FileType
	mime     string
	// also lets office documents whose parts the sniffer cannot see through
	also []string
}

var acceptedTypes = map[string]acceptedType{
	".pdf":  {fileType: domain.FileTypePDF, mime: "application/pdf"},
	".docx": {fileType: domain.FileTypeDOCX, mime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", also: []string{"application/zip"}},
	".xlsx": {fileType: domain.FileTypeXLSX, mime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", also: []string{"application/zip"}},
	".txt":  {fileType: domain.FileTypeTXT, mime: "text/plain"},
}

// File is a document that passed the gate.
type File struct {
	Path     string
	Name     string
	Size     int64
	Type     domain.FileType
	MIMEType string
}

// Validate checks name and size, then sniffs head to confirm the content
// matches the extension.
func Validate(name string, size int64, head io.Reader) (File, error) {
	ext := strings.ToLower(filepath.Ext(name))
	accepted, ok := acceptedTypes[ext]
	if !ok {
		return File{}, reject(CodeInvalidType, fmt.Errorf("extension %q is not accepted", ext))
	}
	if size > MaxFileSize {
		return File{}, reject(CodeTooLarge, fmt.Errorf("%d bytes exceeds %d", size, MaxFileSize))
	}
	if size <= 0 {
		return File{}, reject(CodeFailed, fmt.Errorf("file is empty"))
	}

	detected, err := mimetype.DetectReader(head)
	if err != nil {
		return File{}, reject(CodeFailed, fmt.Errorf("failed to read file: %w", err))
	}
	if !matches(detected, accepted) {
		return File{}, reject(CodeInvalidType, fmt.Errorf("content detected as %s, expected %s", detected.String(), accepted.mime))
	}

	return File{
		Name:     filepath.Base(name),
		Size:     size,
		Type:     accepted.fileType,
		MIMEType: accepted.mime,
	}, nil
}

func matches(detected *mimetype.MIME, accepted acceptedType) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(accepted.mime) {
			return true
		}
		for _, alt := range accepted.also {
			if m.Is(alt) {
				return true
			}
		}
	}
	return false
}

func ValidatePath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, reject(CodeFailed, err)
	}
	if info.IsDir() {
		return File{}, reject(CodeFailed, fmt.Errorf("%s is a directory", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return File{}, reject(CodeFailed, err)
	}
	defer f.Close()

	file, err := Validate(info.Name(), info.Size(), f)
	if err != nil {
		return File{}, err
	}
	file.Path = path
	return file, nil
}
