package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	m := New(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/levels/{category}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, cat := range []string{"tangle", "funthinker-basic"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/levels/"+cat, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/levels/{category}", "418")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RequestsInFlight))
}

func TestObserveHelpers(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveLevels("tangle_pdf", 3)
	m.ObserveReport("range")
	m.ObserveEmail(nil)
	m.ObserveEmail(errors.New("boom"))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.LevelsIngested.WithLabelValues("tangle_pdf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsGenerated.WithLabelValues("range")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("error")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveReport("range") })
}
