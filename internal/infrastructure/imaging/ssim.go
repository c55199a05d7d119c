package imaging

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrSizeMismatch = errors.New("images differ in size")
	ErrTooSmall     = errors.New("image is smaller than the ssim window")
)

// SSIM считает среднее структурное сходство двух полутоновых изображений.
//
// Локальные статистики берутся по квадратному окну с выборочной ковариацией,
// среднее считается по всем позициям, где окно целиком помещается в
// изображение.
type SSIM struct {
	WindowSize int     // нечётное, по умолчанию 7
	K1         float64 // константа яркости
	K2         float64 // константа контраста
	DataRange  float64 // 255 для 8-битных данных
}

// NewSSIM создаёт оценщик с окном 7x7 и K1=0.01, K2=0.03.
func NewSSIM() *SSIM {
	return &SSIM{
		WindowSize: 7,
		K1:         0.01,
		K2:         0.03,
		DataRange:  255,
	}
}

// Score реализует port.SimilarityScorer.
func (s *SSIM) Score(a, b *image.Gray) (float64, error) {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w != b.Rect.Dx() || h != b.Rect.Dy() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, w, h, b.Rect.Dx(), b.Rect.Dy())
	}

	win := s.WindowSize
	if win <= 0 {
		win = 7
	}
	if w < win || h < win {
		return 0, fmt.Errorf("%w: %dx%d < %d", ErrTooSmall, w, h, win)
	}

	ia := newIntegrals(a, b)

	np := float64(win * win)
	covNorm := np / (np - 1)
	c1 := (s.K1 * s.DataRange) * (s.K1 * s.DataRange)
	c2 := (s.K2 * s.DataRange) * (s.K2 * s.DataRange)

	var total float64
	var count int
	for y := 0; y+win <= h; y++ {
		for x := 0; x+win <= w; x++ {
			sx, sy, sxx, syy, sxy := ia.box(x, y, win)

			ux, uy := sx/np, sy/np
			vx := covNorm * (sxx/np - ux*ux)
			vy := covNorm * (syy/np - uy*uy)
			vxy := covNorm * (sxy/np - ux*uy)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			total += num / den
			count++
		}
	}

	return total / float64(count), nil
}

// integrals хранит интегральные изображения для x, y, x², y² и xy.
type integrals struct {
	stride int
	x, y   []float64
	xx, yy []float64
	xy     []float64
}

func newIntegrals(a, b *image.Gray) *integrals {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	stride := w + 1
	n := stride * (h + 1)
	t := &integrals{
		stride: stride,
		x:      make([]float64, n),
		y:      make([]float64, n),
		xx:     make([]float64, n),
		yy:     make([]float64, n),
		xy:     make([]float64, n),
	}

	for row := 0; row < h; row++ {
		pa := a.Pix[row*a.Stride:]
		pb := b.Pix[row*b.Stride:]
		var rx, ry, rxx, ryy, rxy float64
		for col := 0; col < w; col++ {
			va, vb := float64(pa[col]), float64(pb[col])
			rx += va
			ry += vb
			rxx += va * va
			ryy += vb * vb
			rxy += va * vb

			i := (row+1)*stride + col + 1
			up := row*stride + col + 1
			t.x[i] = t.x[up] + rx
			t.y[i] = t.y[up] + ry
			t.xx[i] = t.xx[up] + rxx
			t.yy[i] = t.yy[up] + ryy
			t.xy[i] = t.xy[up] + rxy
		}
	}
	return t
}

func (t *integrals) box(x, y, win int) (sx, sy, sxx, syy, sxy float64) {
	tl := y*t.stride + x
	tr := tl + win
	bl := (y+win)*t.stride + x
	br := bl + win
	sum := func(s []float64) float64 { return s[br] - s[tr] - s[bl] + s[tl] }
	return sum(t.x), sum(t.y), sum(t.xx), sum(t.yy), sum(t.xy)
}
