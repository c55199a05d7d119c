package imaging

import (
	"image"
	"image/draw"
)

// Веса яркости BT.601 в фиксированной точке (масштаб 1<<14), как в
// преобразовании BGR2GRAY у OpenCV.
const (
	grayShift = 14
	grayR     = 4899
	grayG     = 9617
	grayB     = 1868
	grayRound = 1 << (grayShift - 1)
)

// Grayscale переводит img в 8-битную яркость с началом координат в (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	switch src := img.(type) {
	case *image.Gray:
		draw.Draw(out, out.Bounds(), src, b.Min, draw.Src)
		return out
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			row := src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(b.Min.X-src.Rect.Min.X)*4:]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < b.Dx(); x++ {
				p := row[x*4 : x*4+3]
				dst[x] = luma(uint32(p[0]), uint32(p[1]), uint32(p[2]))
			}
		}
		return out
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			out.Pix[y*out.Stride+x] = luma(r>>8, g>>8, bl>>8)
		}
	}
	return out
}

func luma(r, g, b uint32) uint8 {
	return uint8((r*grayR + g*grayG + b*grayB + grayRound) >> grayShift)
}
