package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Petronorm/internal/calc/cipw"
	"Petronorm/internal/chem"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestObserveSample(t *testing.T) {
	m := New()
	e, err := cipw.NewEngine(chem.NewReference(), cipw.WithObserver(m.ObserveSample))
	require.NoError(t, err)

	tbl := cipw.NewTable(
		[]string{"SiO2", "Al2O3", "FeO", "MgO", "CaO", "Na2O", "K2O"},
		[][]string{
			{"35", "1", "10", "45", "5", "0.5", "0.1"},
			{"35", "1", "10", "45", "5", "0.5", "0.1"},
		})
	_, err = e.Compute(t.Context(), tbl, cipw.DefaultOptions())
	require.NoError(t, err)

	out := scrape(t, m)
	assert.Contains(t, out, `petronorm_samples_total{terminal="36g"} 2`)
	assert.Contains(t, out, `petronorm_warnings_total{kind="silica_deficit"} 2`)
}

func TestMiddleware(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/api/user/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Run not found", http.StatusNotFound)
	}).Methods("GET")
	r.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	for _, p := range []string{"/api/user/runs/a", "/api/user/runs/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	out := scrape(t, m)
	assert.Contains(t, out, `petronorm_http_requests_total{code="404",method="GET",route="/api/user/runs/{id}"} 2`)
	assert.Contains(t, out, `petronorm_http_requests_total{code="200",method="GET",route="/ok"} 1`)
	assert.Contains(t, out, `petronorm_http_request_duration_seconds_count{route="/ok"} 1`)
}
