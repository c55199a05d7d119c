package entity

import "image"

// Contour внешняя граница одной связной компоненты границ.
type Contour struct {
	Bounds image.Rectangle // минимальный прямоугольник вокруг контура
	Area   float64         // площадь внутри контура, px²
}

// DefectRegion общий прямоугольник всех достаточно крупных контуров.
type DefectRegion struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Valid сообщает, что ширина и высота положительны.
func (r DefectRegion) Valid() bool {
	return r.XMax > r.XMin && r.YMax > r.YMin
}

// Width возвращает ширину в пикселях.
func (r DefectRegion) Width() int {
	return r.XMax - r.XMin
}

// Height возвращает высоту в пикселях.
func (r DefectRegion) Height() int {
	return r.YMax - r.YMin
}

// Rect переводит область в image.Rectangle.
func (r DefectRegion) Rect() image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax, r.YMax)
}

// UnionRegion объединяет прямоугольники всех контуров с Area >= minArea
// в одну область. Свёртка начинается с (width, height, 0, 0), поэтому ok ложно,
// если ничего не прошло фильтр или область вырождена.
func UnionRegion(contours []Contour, minArea float64, width, height int) (DefectRegion, bool) {
	region := DefectRegion{XMin: width, YMin: height}

	for _, c := range contours {
		if c.Area < minArea {
			continue
		}
		region.XMin = min(region.XMin, c.Bounds.Min.X)
		region.YMin = min(region.YMin, c.Bounds.Min.Y)
		region.XMax = max(region.XMax, c.Bounds.Max.X)
		region.YMax = max(region.YMax, c.Bounds.Max.Y)
	}

	return region, region.Valid()
}

// FlatArea переводит область в мм², считая весь кадр квадратом
// со стороной referenceMM.
func FlatArea(region DefectRegion, width, height int, referenceMM float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	boxPx := float64(region.Width()) * float64(region.Height())
	return boxPx * referenceMM * referenceMM / (float64(width) * float64(height))
}
