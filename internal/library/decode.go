package library

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"
)

// LoadImage decodes an image file, honoring EXIF orientation. WebP files that
// the registered decoders reject are retried with the libwebp decoder.
func LoadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	if !strings.EqualFold(filepath.Ext(path), ".webp") {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("failed to open image: %w", openErr)
	}
	defer f.Close()

	img, err = webp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webp %s: %w", path, err)
	}
	return img, nil
}
