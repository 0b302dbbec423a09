package images

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func setupStorage(t *testing.T) *Storage {
	t.Helper()
	dir, err := os.MkdirTemp("", "images-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	storage, err := NewStorage(dir)
	require.NoError(t, err)
	return storage
}

func TestStorage_SaveGetDelete(t *testing.T) {
	storage := setupStorage(t)
	data := testJPEG(t, 10, 10)

	require.NoError(t, storage.Save("rcp-abc", data))
	assert.True(t, storage.Exists("rcp-abc"))

	got, err := storage.Get("rcp-abc")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	hash, err := storage.Hash("rcp-abc")
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	require.NoError(t, storage.Delete("rcp-abc"))
	assert.False(t, storage.Exists("rcp-abc"))

	// Idempotent delete
	require.NoError(t, storage.Delete("rcp-abc"))
}

func TestStorage_GetMissing(t *testing.T) {
	storage := setupStorage(t)
	_, err := storage.Get("rcp-missing")
	assert.Error(t, err)
}

func TestComputeBlurHash(t *testing.T) {
	hash, err := ComputeBlurHash(testJPEG(t, 200, 150))
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = ComputeBlurHash([]byte("not an image"))
	assert.Error(t, err)
}

func TestComputeBlurHash_PNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	hash, err := ComputeBlurHash(buf.Bytes())
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
}

func TestNormalize_DownscalesOversized(t *testing.T) {
	out, err := Normalize(testJPEG(t, 3200, 1600))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, maxImageDim, img.Bounds().Dx())
	assert.Equal(t, maxImageDim/2, img.Bounds().Dy())
}

func TestNormalize_KeepsSmallDimensions(t *testing.T) {
	out, err := Normalize(testJPEG(t, 400, 300))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}
