package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainwatch/cascade/pkg/analysis"
	"github.com/chainwatch/cascade/pkg/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	g, err := model.Load(
		[]*model.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]*model.Edge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
			{Source: "A", Target: "C"},
		},
	)
	require.NoError(t, err)

	return NewServer(g, analysis.Options{MaxDepth: 2, SkipStructural: true})
}

func TestHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := testServer(t)

	body := `{"source_id": "A", "max_depth": 2}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "A", report.SourceID)
	assert.Len(t, report.PropagationPaths, 3)
	assert.Equal(t, []string{"B", "C"}, report.AffectedNodeIDs)
	assert.NotEmpty(t, report.Mitigations)
}

func TestAnalyzeInlineGraph(t *testing.T) {
	srv := testServer(t)

	body := `{
		"graph": {
			"nodes": [{"id": "x"}, {"id": "y"}],
			"edges": [{"source": "x", "target": "y"}]
		},
		"source_id": "x",
		"max_depth": 1
	}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []string{"y"}, report.AffectedNodeIDs)
}

func TestAnalyzeUnknownSource(t *testing.T) {
	srv := testServer(t)

	body := `{"source_id": "ghost"}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeInvalidDepth(t *testing.T) {
	srv := testServer(t)

	body := `{"source_id": "A", "max_depth": -1}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeInvalidInlineGraph(t *testing.T) {
	srv := testServer(t)

	// Self-loop must be rejected at load time.
	body := `{
		"graph": {"nodes": [{"id": "x"}], "edges": [{"source": "x", "target": "x"}]},
		"source_id": "x"
	}`
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportBeforeAnalysis(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportAfterAnalysis(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"source_id": "A"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/report", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var report analysis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "A", report.SourceID)
}

func TestGraphEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/graph", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Nodes []*model.Node `json:"nodes"`
		Edges []*model.Edge `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 3)
}

func TestEventsUnknownTopic(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/events/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
