package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/buckket/go-blurhash"
)

const (
	xComponents = 4
	yComponents = 3

	// Encoding cost grows with pixel count; the hash only keeps a few
	// frequencies, so a small thumbnail gives the same result.
	maxSampleSide = 64

	// Decoded size is bounded by pixel count, not by the upload size.
	maxPixels = 40_000_000
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

// Blurhash decodes an image and returns its placeholder token. Images larger
// than maxPixels are refused before any pixel data is decoded.
func Blurhash(r io.Reader) (string, error) {
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return "", ErrUnsupportedImage
		}
		return "", fmt.Errorf("failed to decode image config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return "", ErrImageTooLarge
	}

	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return "", ErrUnsupportedImage
		}
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	return BlurhashImage(img)
}

func BlurhashImage(img image.Image) (string, error) {
	hash, err := blurhash.Encode(xComponents, yComponents, thumbnail(img, maxSampleSide))
	if err != nil {
		return "", fmt.Errorf("failed to encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail nearest-neighbour samples img so that its longer side is at most
// maxSide pixels.
func thumbnail(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSide && h <= maxSide {
		return img
	}

	tw, th := maxSide, maxSide
	if w > h {
		th = max(1, h*maxSide/w)
	} else {
		tw = max(1, w*maxSide/h)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	for y := 0; y < th; y++ {
		sy := b.Min.Y + y*h/th
		for x := 0; x < tw; x++ {
			sx := b.Min.X + x*w/tw
			dst.Set(x, y, color.NRGBAModel.Convert(img.At(sx, sy)))
		}
	}
	return dst
}
