package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersAreRegistered(t *testing.T) {
	before := testutil.ToFloat64(ReportsTotal.WithLabelValues("High Severity"))
	ReportsTotal.WithLabelValues("High Severity").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(ReportsTotal.WithLabelValues("High Severity")))

	FramesRetainedTotal.Inc()

	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "wheelflat_frames_retained_total"))
}
