package media

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-messenger/internal/domain"
)

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(2<<20, "image/png"))
	require.NoError(t, Validate(MaxSize, "video/mp4"))
	require.NoError(t, Validate(10, "application/pdf"))
	require.NoError(t, Validate(10, "text/plain; charset=utf-8"))

	err := Validate(MaxSize+1, "image/png")
	require.ErrorIs(t, err, domain.ErrInvalidMedia)
	require.Contains(t, domain.ReasonOf(err), "100 MiB")

	err = Validate(10, "application/x-msdownload")
	require.ErrorIs(t, err, domain.ErrInvalidMedia)
	require.Equal(t, "File type not supported", domain.ReasonOf(err))

	require.ErrorIs(t, Validate(0, "image/png"), domain.ErrInvalidMedia)
}

func TestKindFor(t *testing.T) {
	require.Equal(t, domain.MediaImage, KindFor("IMAGE/JPEG"))
	require.Equal(t, domain.MediaVideo, KindFor("video/quicktime"))
	require.Equal(t, domain.MediaFile, KindFor("application/zip"))
}

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	require.Equal(t, "u1/c1/1700000000123_photo.png", ObjectPath("u1", "c1", now, "photo.png"))
	require.Equal(t, "u1/c1/1700000000123_passwd", ObjectPath("u1", "c1", now, "../../etc/passwd"))
	require.Equal(t, "u1/c1/1700000000123_file", ObjectPath("u1", "c1", now, ""))
}

func TestFileBlobStoreUpload(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileBlobStore(root, "https://blobs.example.com/")
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), strings.NewReader("png-bytes"), "u1/c1/1_photo.png")
	require.NoError(t, err)
	require.Equal(t, "https://blobs.example.com/u1/c1/1_photo.png", url)

	data, err := os.ReadFile(filepath.Join(root, "u1", "c1", "1_photo.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	_, err = store.Upload(context.Background(), strings.NewReader("x"), "../escape")
	require.Error(t, err)
}

func TestFileBlobStoreRejectsOversizedBody(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileBlobStore(root, "https://blobs.example.com")
	require.NoError(t, err)
	store.maxSize = 4

	_, err = store.Upload(context.Background(), strings.NewReader("12345"), "u1/c1/1_big.bin")
	require.ErrorIs(t, err, domain.ErrInvalidMedia)
	require.NoFileExists(t, filepath.Join(root, "u1", "c1", "1_big.bin"))

	entries, err := os.ReadDir(filepath.Join(root, "u1", "c1"))
	require.NoError(t, err)
	require.Empty(t, entries, "no temp file is left behind")

	_, err = store.Upload(context.Background(), strings.NewReader("1234"), "u1/c1/2_ok.bin")
	require.NoError(t, err)
}

func TestSizedReaderChecksDeclaredSize(t *testing.T) {
	read := func(body string, size int64) error {
		_, err := io.ReadAll(SizedReader(strings.NewReader(body), size))
		return err
	}
	require.NoError(t, read("abc", 3))
	require.ErrorIs(t, read("abcd", 3), domain.ErrInvalidMedia)
	require.ErrorIs(t, read("ab", 3), domain.ErrInvalidMedia)
}
