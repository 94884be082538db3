// Package capture normalises raw screenshots from any driver into the JPEG
// form sent to vision models.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"browser-runner/internal/domain/entity"
)

const (
	MaxWidth = 1024
	Quality  = 75
)

// Normalize decodes a PNG or JPEG screenshot, downsizes it to MaxWidth
// keeping the aspect ratio and re-encodes it as JPEG.
func Normalize(raw []byte) (*entity.Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > MaxWidth {
		img = imaging.Resize(img, MaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
