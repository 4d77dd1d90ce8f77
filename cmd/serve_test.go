package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/intel-cli/internal/model"
	"github.com/sells-group/intel-cli/internal/pipeline"
	"github.com/sells-group/intel-cli/internal/store"
)

type fakeAnalyzer struct {
	report *model.Report
	err    error
	got    pipeline.Request
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req pipeline.Request) (*model.Report, error) {
	f.got = req
	return f.report, f.err
}

func testAPIStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestHealthz(t *testing.T) {
	router := newRouter(testAPIStore(t), &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleAnalyze(t *testing.T) {
	fake := &fakeAnalyzer{report: &model.Report{
		ID:      "r1",
		Company: "Acme Corp",
	}}
	router := newRouter(testAPIStore(t), fake)

	body := `{"company":"Acme Corp","competitors":["Globex"],"force":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Corp", fake.got.Company)
	assert.Equal(t, []string{"Globex"}, fake.got.Competitors)
	assert.True(t, fake.got.Force)

	var got model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "r1", got.ID)
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	router := newRouter(testAPIStore(t), &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"company":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "company is required")
}

func TestHandleAnalyze_PipelineError(t *testing.T) {
	router := newRouter(testAPIStore(t), &fakeAnalyzer{err: assert.AnError})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"company":"Acme"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleReports(t *testing.T) {
	st := testAPIStore(t)
	ctx := context.Background()
	report := &model.Report{
		ID:          "r1",
		Company:     "Acme Corp",
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, st.SaveReport(ctx, report, time.Hour))

	router := newRouter(st, &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var metas []store.ReportMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metas))
	require.Len(t, metas, 1)
	assert.Equal(t, "r1", metas[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/r1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Acme Corp", got.Company)
}

func TestHandleReports_NotFoundAndBadParams(t *testing.T) {
	router := newRouter(testAPIStore(t), &fakeAnalyzer{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports?limit=nope", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}
