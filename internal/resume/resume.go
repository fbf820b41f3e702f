// Package resume validates uploaded resume files and stores them on local
// disk or in an S3-compatible bucket.
package resume

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/config"
)

// DefaultMaxBytes is the resume size limit.
const DefaultMaxBytes int64 = 5 << 20

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// accepted maps each allowed extension to its MIME type.
var accepted = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
}

// Validate checks the declared extension, the sniffed content and the size.
// It returns the canonical MIME type.
func Validate(filename string, data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return "", apperr.Invalid("resume", "file is empty")
	}
	if int64(len(data)) > maxBytes {
		return "", apperr.Invalid("resume", fmt.Sprintf("must be at most %d MB", maxBytes>>20))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	want, ok := accepted[ext]
	if !ok {
		return "", apperr.Invalid("resume", "must be a PDF, DOC or DOCX file")
	}

	detected := mimetype.Detect(data)
	switch {
	case want == MimeDOCX && (detected.Is(MimeDOCX) || detected.Is("application/zip")):
		// a docx is a zip; only a WordprocessingML package counts
		if wordPackage(data) {
			return want, nil
		}
		return "", apperr.Invalid("resume", "content is a zip archive, not a DOCX file")
	case detected.Is(want):
		return want, nil
	}
	return "", apperr.Invalid("resume", fmt.Sprintf("content is %s, not a %s file", detected.String(), strings.ToUpper(ext[1:])))
}

// wordPackage reports whether data is an OPC package with a word/ part.
func wordPackage(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	var types, word bool
	for _, f := range zr.File {
		switch {
		case f.Name == "[Content_Types].xml":
			types = true
		case strings.HasPrefix(f.Name, "word/"):
			word = true
		}
	}
	return types && word
}

// Stored describes a saved resume.
type Stored struct {
	URL      string
	MimeType string
	Size     int64
}

// Backend puts a validated resume somewhere and returns its public URL.
type Backend interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Store validates resumes and hands them to a Backend.
type Store struct {
	Backend  Backend
	MaxBytes int64
}

func NewStore(backend Backend, maxBytes int64) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{Backend: backend, MaxBytes: maxBytes}
}

// Open builds the store selected by uploads.backend.
func Open(cfg *config.Config) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Uploads.Backend {
	case config.UploadsS3:
		backend, err = NewS3Backend(cfg.Uploads.S3)
	default:
		backend, err = NewDiskBackend(cfg.Uploads.Dir, cfg.Uploads.PublicPath)
	}
	if err != nil {
		return nil, err
	}
	return NewStore(backend, cfg.Uploads.MaxResumeBytes), nil
}

// Save validates r and stores it under a random name.
func (s *Store) Save(ctx context.Context, filename string, r io.Reader) (*Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, apperr.Wrap(err, "read resume")
	}
	mimeType, err := Validate(filename, data, s.MaxBytes)
	if err != nil {
		return nil, err
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	url, err := s.Backend.Put(ctx, name, mimeType, data)
	if err != nil {
		return nil, err
	}
	return &Stored{URL: url, MimeType: mimeType, Size: int64(len(data))}, nil
}
