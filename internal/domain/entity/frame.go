package entity

import (
	"fmt"
	"image"
)

// Frame один декодированный кадр видеопотока.
type Frame struct {
	Index int         // номер в исходном потоке, с нуля
	Image image.Image // цветное изображение
	Gray  *image.Gray // полутоновая плоскость для сравнения
}

// RetainedFrame описывает кадр, оставленный экстрактором.
type RetainedFrame struct {
	WheelIndex  int    // с нуля, по одному на сохранённый кадр
	AxleIndex   int    // с 1, растёт каждые два колеса
	SourceIndex int    // Frame.Index сохранённого кадра
	Path        string // куда записан кадр
}

// Name возвращает имя файла кадра.
func (f RetainedFrame) Name() string {
	return FrameName(f.WheelIndex, f.AxleIndex)
}

// FrameName строит имя wheel_{wheel:02d}_axle{axle}.jpg.
func FrameName(wheel, axle int) string {
	return fmt.Sprintf("wheel_%02d_axle%d.jpg", wheel, axle)
}

// ExtractionResult итог одного прохода по видео.
type ExtractionResult struct {
	Frames     []RetainedFrame
	FramesRead int
}

// Count возвращает число сохранённых кадров.
func (r *ExtractionResult) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Frames)
}
