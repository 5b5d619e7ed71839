package hellod3d

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
)

// RenderFrame rasterizes the configured scene at the configured window size.
func RenderFrame(cfg *Config) (*image.NRGBA, error) {
	r := NewRasterizer(cfg.Renderer)
	return r.Render(cfg.Scene(), cfg.Window.Size())
}

// Snapshot renders a single frame offscreen and encodes it into w.
func Snapshot(cfg *Config, w io.Writer, format imaging.Format) error {
	img, err := RenderFrame(cfg)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, format, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("encoding %v snapshot: %w", format, err)
	}
	return nil
}

// SaveSnapshot renders a single frame into the file at path. The image
// format is derived from the file extension.
func SaveSnapshot(cfg *Config, path string) (err error) {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create snapshot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return Snapshot(cfg, f, format)
}
