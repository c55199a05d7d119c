package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// SeverityReport результат анализа снимка, на котором найден ползун.
type SeverityReport struct {
	ImageName      string       `json:"image_name"`
	Image          string       `json:"image"`   // processed_{image_name}
	Heatmap        string       `json:"heatmap"` // heatmap_{image_name}
	FlatAreaMM2    float64      `json:"flat_area_mm2"`
	Severity       Severity     `json:"severity"`
	ImpactAnalysis string       `json:"impact_analysis"`
	Region         DefectRegion `json:"-"`
}

// MarshalJSON округляет flat_area_mm2 до двух знаков.
func (r SeverityReport) MarshalJSON() ([]byte, error) {
	type Alias SeverityReport
	return json.Marshal(&struct {
		FlatAreaMM2 float64 `json:"flat_area_mm2"`
		Alias
	}{
		FlatAreaMM2: RoundArea(r.FlatAreaMM2),
		Alias:       (Alias)(r),
	})
}

// RoundArea округляет площадь до двух знаков.
func RoundArea(v float64) float64 {
	return math.Round(v*100) / 100
}

// ProcessedName имя обработанной копии изображения.
func ProcessedName(imageName string) string {
	return "processed_" + imageName
}

// HeatmapName имя тепловой карты изображения.
func HeatmapName(imageName string) string {
	return "heatmap_" + imageName
}

// Label вердикт классификатора: flat или non_flat.
type Label string

const (
	LabelFlat    Label = "flat"
	LabelNonFlat Label = "non_flat"
)

// Classification связывает кадр с его меткой.
type Classification struct {
	ImageName string `json:"image_name"`
	Label     Label  `json:"label"`
}

// AnalysisOutcome результат обработки одного файла: отчёт,
// "дефекта нет" или пропуск с причиной.
type AnalysisOutcome struct {
	ImageName string
	Report    *SeverityReport
	Skipped   string // непустой, если файл пропущен из-за ошибки
}

// OK сообщает, обработан ли файл без ошибок.
func (o AnalysisOutcome) OK() bool {
	return o.Skipped == ""
}

// Found сообщает, получен ли по файлу отчёт.
func (o AnalysisOutcome) Found() bool {
	return o.OK() && o.Report != nil
}

// InspectionSummary содержит всё, что дал один запуск проверки.
type InspectionSummary struct {
	RunID      uuid.UUID
	Video      string
	StartedAt  time.Time
	Extraction *ExtractionResult
	Labels     []Classification
	Reports    []SeverityReport
	Skipped    []AnalysisOutcome
}

// LabelMap возвращает метки классификатора по именам файлов.
func (s *InspectionSummary) LabelMap() map[string]Label {
	out := make(map[string]Label, len(s.Labels))
	for _, c := range s.Labels {
		out[c.ImageName] = c.Label
	}
	return out
}
