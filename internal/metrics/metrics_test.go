package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersIncrementCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("item", "hit"))
	RecordCacheLookup("item", true)
	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("item", "hit")); got != before+1 {
		t.Fatalf("hit counter not incremented: %v -> %v", before, got)
	}

	before = testutil.ToFloat64(cacheInvalidationsTotal.WithLabelValues("list"))
	RecordCacheInvalidation("list")
	if got := testutil.ToFloat64(cacheInvalidationsTotal.WithLabelValues("list")); got != before+1 {
		t.Fatalf("invalidation counter not incremented")
	}

	before = testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("s3", "fetch_item", "error"))
	RecordUpstream("s3", "fetch_item", 20*time.Millisecond, false)
	if got := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("s3", "fetch_item", "error")); got != before+1 {
		t.Fatalf("upstream error counter not incremented")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordRequest("render", 200)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "anyindex_http_requests_total") {
		t.Fatalf("exposition should include request counter")
	}
}
