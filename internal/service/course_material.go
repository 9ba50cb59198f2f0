package service

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/noah-isme/lumora-api/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = fmt.Errorf("%w: file exceeds maximum allowed size", ErrInvalidInput)
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = fmt.Errorf("%w: file type not allowed", ErrInvalidInput)
	// ErrUploadScanFailed indicates validation of the file failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
)

var allowedMaterialTypes = map[string]struct{}{
	"application/pdf":               {},
	"application/zip":               {},
	"application/msword":            {},
	"application/vnd.ms-powerpoint": {},

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},

	"text/plain": {},
	"image":      {},
}

type inspectedMaterial struct {
	Name     string
	MimeType string
	Payload  []byte
}

// inspectMaterial buffers an upload, enforces the size cap and sniffs its content type.
func inspectMaterial(name string, content io.Reader, maxSize int64) (inspectedMaterial, error) {
	if content == nil {
		return inspectedMaterial{}, invalidInput("file is required")
	}

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(content, maxSize+1)); err != nil {
		return inspectedMaterial{}, fmt.Errorf("read upload: %w", err)
	}
	if buf.Len() == 0 {
		return inspectedMaterial{}, invalidInput("file is empty")
	}
	if int64(buf.Len()) > maxSize {
		observability.MaterialRejected().WithLabelValues("size").Inc()
		return inspectedMaterial{}, ErrUploadTooLarge
	}

	fileType := normalizeMime(mimetype.Detect(buf.Bytes()).String())
	if _, ok := allowedMaterialTypes[fileType]; !ok {
		observability.MaterialRejected().WithLabelValues("type").Inc()
		return inspectedMaterial{}, ErrUploadTypeNotAllowed
	}

	if strings.Contains(fileType, "zip") {
		if err := scanArchive(buf.Bytes(), maxSize); err != nil {
			observability.MaterialRejected().WithLabelValues("scan").Inc()
			return inspectedMaterial{}, err
		}
	}

	return inspectedMaterial{
		Name:     sanitizeFileName(name),
		MimeType: fileType,
		Payload:  buf.Bytes(),
	}, nil
}

func scanArchive(payload []byte, maxSize int64) error {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return ErrUploadScanFailed
	}
	var totalUncompressed uint64
	for _, f := range reader.File {
		totalUncompressed += f.UncompressedSize64
		if totalUncompressed > uint64(maxSize*20) {
			return fmt.Errorf("zip archive uncompressed size too large: %w", ErrUploadScanFailed)
		}
	}
	return nil
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("material-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	if strings.HasPrefix(lower, "image/") {
		return "image"
	}
	if lower == "application/x-zip-compressed" {
		return "application/zip"
	}
	return lower
}
