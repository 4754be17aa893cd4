// Package media validates attachments and hands them to the blob store.
package media

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iyunix/go-messenger/internal/domain"
)

// MaxSize is the largest attachment accepted.
const MaxSize int64 = 100 * 1024 * 1024

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

var fileTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.ms-excel":                                                  true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-rar-compressed": true,
	"application/x-7z-compressed":  true,
	"text/plain":                   true,
}

func normalize(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

// Validate checks an attachment before anything is uploaded.
func Validate(size int64, mimeType string) error {
	if size <= 0 {
		return domain.NewValidationError("validate_media", domain.ErrInvalidMedia, "File is empty")
	}
	if size > MaxSize {
		return domain.NewValidationError("validate_media", domain.ErrInvalidMedia,
			fmt.Sprintf("File size must be less than %s (got %s)", humanize.IBytes(uint64(MaxSize)), humanize.IBytes(uint64(size))))
	}
	mt := normalize(mimeType)
	if !imageTypes[mt] && !videoTypes[mt] && !fileTypes[mt] {
		return domain.NewValidationError("validate_media", domain.ErrInvalidMedia, "File type not supported")
	}
	return nil
}

func tooLarge(operation string, limit int64) error {
	return domain.NewValidationError(operation, domain.ErrInvalidMedia,
		fmt.Sprintf("File size must be less than %s", humanize.IBytes(uint64(limit))))
}

// KindFor maps a MIME type to the kind recorded on the message.
func KindFor(mimeType string) domain.MediaKind {
	mt := normalize(mimeType)
	switch {
	case imageTypes[mt]:
		return domain.MediaImage
	case videoTypes[mt]:
		return domain.MediaVideo
	}
	return domain.MediaFile
}

// ObjectPath is where an upload from userID into chatID is stored.
func ObjectPath(userID, chatID string, now time.Time, fileName string) string {
	return path.Join(userID, chatID, fmt.Sprintf("%d_%s", now.UnixMilli(), SafeName(fileName)))
}

// SafeName strips directories and separators from a client-supplied name.
func SafeName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "file"
	}
	return name
}
