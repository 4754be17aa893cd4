package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iyunix/go-messenger/internal/domain"
)

// BlobStore persists attachment bytes and returns a URL for them.
type BlobStore interface {
	Upload(ctx context.Context, r io.Reader, objectPath string) (string, error)
}

// FileBlobStore keeps blobs under a local directory and serves them from
// baseURL.
type FileBlobStore struct {
	root    string
	baseURL string
	maxSize int64
}

func NewFileBlobStore(root, baseURL string) (*FileBlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &FileBlobStore{root: root, baseURL: strings.TrimRight(baseURL, "/"), maxSize: MaxSize}, nil
}

func (s *FileBlobStore) Upload(ctx context.Context, r io.Reader, objectPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(objectPath))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create blob directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if n > s.maxSize {
		tmp.Close()
		return "", tooLarge("upload_media", s.maxSize)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("commit blob: %w", err)
	}
	return s.baseURL + "/" + filepath.ToSlash(clean), nil
}

// SizedReader reads r and fails once it yields more or fewer bytes than the
// declared size.
func SizedReader(r io.Reader, size int64) io.Reader {
	return &sizedReader{r: r, remaining: size}
}

type sizedReader struct {
	r         io.Reader
	remaining int64
}

func (s *sizedReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	s.remaining -= int64(n)
	if s.remaining < 0 || (err == io.EOF && s.remaining > 0) {
		return n, domain.NewValidationError("upload_media", domain.ErrInvalidMedia, "File size does not match its contents")
	}
	return n, err
}
