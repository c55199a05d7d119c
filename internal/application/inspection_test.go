package app

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wheelflat/internal/domain/entity"
	"wheelflat/internal/infrastructure/imaging"
	"wheelflat/internal/infrastructure/storage"
)

// labelRecorder keeps the last label batch handed to the repository.
type labelRecorder struct {
	*storage.MemoryReportRepository
	labels []entity.Classification
}

func (r *labelRecorder) SaveLabels(ctx context.Context, summary *entity.InspectionSummary) error {
	r.labels = append([]entity.Classification(nil), summary.Labels...)
	return r.MemoryReportRepository.SaveLabels(ctx, summary)
}

type inspectionFixture struct {
	svc      *InspectionService
	repo     *labelRecorder
	notifier *recordingNotifier
	dir      string
}

func newInspectionFixture(t *testing.T, classifier *labelClassifier, saveLabels bool) *inspectionFixture {
	t.Helper()

	dir := t.TempDir()
	frames, err := storage.NewFileStore(dir)
	require.NoError(t, err)

	a := checkerboard(64, 48, 8, false)
	b := checkerboard(64, 48, 8, true)
	opener := &sequenceOpener{frames: []image.Image{a, a, b, a}}

	extractor := NewFrameExtractor(opener, imaging.NewSSIM(), frames, discardLogger(), ExtractorConfig{Threshold: DefaultThreshold})
	contours := &widthContours{byWidth: map[int][]entity.Contour{64: {contour(8, 8, 40, 40)}}}
	analyzer := NewFlatnessAnalyzer(contours, &recordingRenderer{}, &memoryFrameStore{}, discardLogger(), DefaultAnalyzerConfig())

	repo := &labelRecorder{MemoryReportRepository: storage.NewMemoryReportRepository()}
	notifier := &recordingNotifier{err: errors.New("chat unavailable")}

	svc := NewInspectionService(extractor, analyzer, imaging.NewFileLoader(), classifier, repo, notifier, discardLogger(),
		InspectionConfig{SaveLabels: saveLabels})

	return &inspectionFixture{svc: svc, repo: repo, notifier: notifier, dir: dir}
}

func TestInspectionService_Inspect(t *testing.T) {
	classifier := &labelClassifier{labels: map[string]entity.Label{
		"wheel_00_axle1.jpg": entity.LabelFlat,
		"wheel_01_axle1.jpg": entity.LabelNonFlat,
	}}
	fx := newInspectionFixture(t, classifier, true)

	summary, err := fx.svc.Inspect(context.Background(), "train.mp4")
	require.NoError(t, err)

	require.Equal(t, 3, summary.Extraction.Count())
	assert.Equal(t, 4, summary.Extraction.FramesRead)

	assert.Equal(t, map[string]entity.Label{
		"wheel_00_axle1.jpg": entity.LabelFlat,
		"wheel_01_axle1.jpg": entity.LabelNonFlat,
	}, summary.LabelMap())

	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, "wheel_02_axle2.jpg", summary.Skipped[0].ImageName)

	require.Len(t, summary.Reports, 1)
	report := summary.Reports[0]
	assert.Equal(t, "wheel_00_axle1.jpg", report.ImageName)
	assert.Equal(t, entity.SeverityHigh, report.Severity)

	// ошибки оповещения только логируются
	require.Len(t, fx.notifier.sent, 1)

	stored, err := fx.repo.RecentReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, summary.Reports, stored)
	assert.Equal(t, summary.Labels, fx.repo.labels)

	data, err := os.ReadFile(filepath.Join(fx.dir, LabelsFileName))
	require.NoError(t, err)
	assert.Equal(t, "wheel_00_axle1.jpg: flat\nwheel_01_axle1.jpg: non_flat\n", string(data))
}

func TestInspectionService_PassThroughClassifier(t *testing.T) {
	fx := newInspectionFixture(t, nil, false)
	fx.svc.classifier = PassThroughClassifier{}

	summary, err := fx.svc.Inspect(context.Background(), "train.mp4")
	require.NoError(t, err)
	assert.Len(t, summary.Reports, 3)
	assert.Empty(t, summary.Skipped)

	_, err = os.Stat(filepath.Join(fx.dir, LabelsFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestInspectionService_ExtractionFailure(t *testing.T) {
	fx := newInspectionFixture(t, &labelClassifier{}, false)
	fx.svc.extractor.opener = &sequenceOpener{err: errors.New("codec")}

	summary, err := fx.svc.Inspect(context.Background(), "broken.mp4")
	require.ErrorIs(t, err, ErrStreamOpen)
	assert.Empty(t, summary.Reports)

	stored, err := fx.repo.RecentReports(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
