package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)
	SetServerBuildInfo("1.0.0", "abc", "2024-01-01")
	RecordProxyRequest(OutcomeSuccess)
	RecordProxyRequest(OutcomeSuccess)
	RecordProxyRequest(OutcomeUpstreamError)
	ObserveUpstream("gemini-1.5-flash", StatusClass(200), 100*time.Millisecond)

	if v := testutil.ToFloat64(proxyRequests.WithLabelValues(OutcomeSuccess)); v != 2 {
		t.Fatalf("proxy success: %v", v)
	}
	if v := testutil.ToFloat64(proxyRequests.WithLabelValues(OutcomeUpstreamError)); v != 1 {
		t.Fatalf("proxy upstream error: %v", v)
	}
	if v := testutil.ToFloat64(upstreamRequests.WithLabelValues("gemini-1.5-flash", "2xx")); v != 1 {
		t.Fatalf("upstream requests: %v", v)
	}
	if n := testutil.CollectAndCount(upstreamDuration); n != 1 {
		t.Fatalf("upstream duration series: %d", n)
	}
	if v := testutil.ToFloat64(buildInfo.WithLabelValues("2024-01-01", "abc", "1.0.0")); v != 1 {
		t.Fatalf("build info: %v", v)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 429: "4xx", 503: "5xx", 0: "error", 700: "error"}
	for in, want := range tests {
		if got := StatusClass(in); got != want {
			t.Errorf("StatusClass(%d) = %q; want %q", in, got, want)
		}
	}
}
