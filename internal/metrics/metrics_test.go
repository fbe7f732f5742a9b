package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCountsOperations(t *testing.T) {
	r := NewRecorder()
	r.Observe(context.Background(), "accession.create", true, 5*time.Millisecond)
	r.Observe(context.Background(), "accession.create", false, time.Millisecond)
	r.Observe(context.Background(), "accession.create", true, time.Millisecond)

	if got := testutil.ToFloat64(r.OperationsTotal.WithLabelValues("accession.create", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(r.OperationsTotal.WithLabelValues("accession.create", "error")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestHandlerExposesRequestCounters(t *testing.T) {
	r := NewRecorder()
	r.ObserveRequest(http.MethodGet, "/api/accessions", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	want := `genebank_http_requests_total{method="GET",route="/api/accessions",status="200"} 1`
	if !strings.Contains(string(body), want) {
		t.Fatalf("expected %q in exposition:\n%s", want, body)
	}
}
