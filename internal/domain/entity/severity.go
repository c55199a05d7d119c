package entity

// Severity степень опасности ползуна.
type Severity string

const (
	SeverityNone   Severity = "No Flat Area Detected"
	SeverityLow    Severity = "Low Severity"
	SeverityMedium Severity = "Medium Severity"
	SeverityHigh   Severity = "High Severity"
)

const unknownImpact = "Unknown severity level."

var impacts = map[Severity]string{
	SeverityLow:    "Minimal impact, normal operation.",
	SeverityMedium: "Potential impact, recommend further inspection.",
	SeverityHigh:   "High risk, urgent replacement needed.",
	SeverityNone:   "No impact.",
}

// ClassifySeverity раскладывает площадь в мм² по полуинтервалам
// [1,50), [50,100) и [100,∞). Всё меньше 1 мм² считается
// SeverityNone, даже если область нашлась.
func ClassifySeverity(flatAreaMM2 float64) Severity {
	switch {
	case flatAreaMM2 >= 1 && flatAreaMM2 < 50:
		return SeverityLow
	case flatAreaMM2 >= 50 && flatAreaMM2 < 100:
		return SeverityMedium
	case flatAreaMM2 >= 100:
		return SeverityHigh
	default:
		return SeverityNone
	}
}

// Impact возвращает описание последствий для степени опасности.
func Impact(s Severity) string {
	if text, ok := impacts[s]; ok {
		return text
	}
	return unknownImpact
}
