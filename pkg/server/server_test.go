package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rg0now/exam-trend-report/pkg/config"
	"github.com/rg0now/exam-trend-report/pkg/dataset"
	"github.com/rg0now/exam-trend-report/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ds, err := dataset.Sample()
	require.NoError(t, err)
	return New(ds, config.NewDefaultConfig(), zap.NewNop())
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestReport(t *testing.T) {
	rec := get(t, newTestServer(t), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "示例学生高一成绩报告")
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestWorkbook(t *testing.T) {
	rec := get(t, newTestServer(t), "/report.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.xlsx")
	// xlsx is a zip archive.
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestAnalyses(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/analyses")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2+3*len(models.Subjects))
	assert.Equal(t, models.MetricTotalScore, got[0].Metric)
}

func TestAnalysesByMetric(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
		count  int
	}{
		{"scores", "/api/analyses/score", http.StatusOK, len(models.Subjects)},
		{"aggregate", "/api/analyses/total_school_rank", http.StatusOK, 1},
		{"subject id", "/api/analyses/class_rank?subject=math", http.StatusOK, 1},
		{"subject label", "/api/analyses/school_rank?subject=%E7%89%A9%E7%90%86", http.StatusOK, 1},
		{"no aggregate class rank narrative", "/api/analyses/total_class_rank", http.StatusOK, 0},
		{"unknown metric", "/api/analyses/grade", http.StatusNotFound, 0},
		{"unknown subject", "/api/analyses/score?subject=history", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				var e errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.NotEmpty(t, e.Error)
				return
			}
			var got []models.AnalysisResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Len(t, got, tt.count)
		})
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyses", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
