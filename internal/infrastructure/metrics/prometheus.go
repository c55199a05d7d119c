package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wheelflat_frames_read_total",
		Help: "Total number of video frames read by the extractor",
	})

	FramesRetainedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wheelflat_frames_retained_total",
		Help: "Total number of frames kept after similarity dedup",
	})

	ImagesAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wheelflat_images_analyzed_total",
		Help: "Images run through the flatness analyzer, by outcome",
	}, []string{"outcome"})

	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wheelflat_reports_total",
		Help: "Severity reports produced, by severity",
	}, []string{"severity"})

	FlatAreaMM2 = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wheelflat_flat_area_mm2",
		Help:    "Measured flat area of reported defects",
		Buckets: []float64{1, 10, 25, 50, 75, 100, 250, 1000},
	})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wheelflat_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
)
