// AngelaMos | 2026
// filesystem_test.go

package blob

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penward/marketplace/internal/config"
	"github.com/penward/marketplace/internal/core"
)

func testConfig(t *testing.T) config.BlobConfig {
	t.Helper()
	return config.BlobConfig{
		Backend:      "filesystem",
		Dir:          t.TempDir(),
		MaxUploadMB:  1,
		MaxImageEdge: 128,
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestFilesystemStoreRetrieveDelete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	payload := []byte("chapter one draft")

	id, err := fs.Store(ctx, payload, KindDocument)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := fs.Retrieve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, fs.Delete(ctx, id))

	_, err = fs.Retrieve(ctx, id)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestFilesystemDistinctIDsPerStore(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	id1, err := fs.Store(ctx, []byte("a"), KindDocument)
	require.NoError(t, err)
	id2, err := fs.Store(ctx, []byte("a"), KindDocument)
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
}

func TestFilesystemRejectsNonPNGImage(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	_, err = fs.Store(ctx, []byte("GIF89a not a png"), KindImage)
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestFilesystemAcceptsPNGImage(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	id, err := fs.Store(ctx, pngBytes(t, 64, 64), KindImage)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestFilesystemRejectsOversizedImage(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	_, err = fs.Store(ctx, pngBytes(t, 256, 64), KindImage)
	assert.ErrorIs(t, err, core.ErrInvalidFormat)
}

func TestFilesystemRejectsEmptyPayload(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	_, err = fs.Store(ctx, nil, KindDocument)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestFilesystemDeleteMissing(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	err = fs.Delete(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestFilesystemRejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(testConfig(t))
	require.NoError(t, err)

	for _, id := range []string{"..", "../../etc/passwd", "no-such-blob"} {
		_, err = fs.Retrieve(ctx, id)
		assert.ErrorIs(t, err, core.ErrNotFound)

		err = fs.Delete(ctx, id)
		assert.ErrorIs(t, err, core.ErrNotFound)
	}
}
