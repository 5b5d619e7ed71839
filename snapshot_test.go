package hellod3d

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_ShouldEncodeADecodableImage(t *testing.T) {
	assert := assert.New(t)

	cfg := DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 40, 30
	cfg.Renderer.Samples = 1

	var buf bytes.Buffer
	require.NoError(t, Snapshot(cfg, &buf, imaging.PNG))

	img, err := imaging.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(40, img.Bounds().Dx())
	assert.Equal(30, img.Bounds().Dy())

	_, _, _, a := img.At(0, 0).RGBA()
	assert.Equal(uint32(0xffff), a)
}

func TestSnapshot_SaveShouldPickTheFormatFromTheExtension(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Window.Width, cfg.Window.Height = 16, 16

	path := filepath.Join(dir, "frame.jpg")
	require.NoError(t, SaveSnapshot(cfg, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := imaging.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 16, img.Bounds().Dx())

	err = SaveSnapshot(cfg, filepath.Join(dir, "frame.xyz"))
	assert.ErrorIs(t, err, imaging.ErrUnsupportedFormat)
}
