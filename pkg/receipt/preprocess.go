package receipt

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// minHeight is the pixel height below which receipts get upscaled before OCR;
// Tesseract degrades badly on small crops.
const minHeight = 1200

// normalize converts to grayscale and upscales small images.
func normalize(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minHeight {
		gray = imaging.Resize(gray, 0, minHeight, imaging.Lanczos)
	}
	return gray
}

// binarize applies a global threshold, used as a second OCR pass when the
// plain grayscale pass finds nothing useful.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bl) / 3 >> 8)
			v := uint8(255)
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// sharpen boosts local contrast ahead of binarization.
func sharpen(img *image.NRGBA) *image.NRGBA {
	return imaging.Sharpen(imaging.AdjustContrast(img, 20), 1.0)
}
