package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gkvlabs/gKV/lib/db"
	"github.com/gkvlabs/gKV/rpc/common"
)

// --------------------------------------------------------------------------
// Metrics Instrumentation
// --------------------------------------------------------------------------

// requestsTotal counts handled requests per operation type.
func requestsTotal(op common.MessageType) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`gkv_rpc_requests_total{op=%q}`, op.String()))
}

// errorsTotal counts failed requests per operation type and return code.
func errorsTotal(op common.MessageType, code db.RetCode) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`gkv_rpc_errors_total{op=%q,code=%q}`, op.String(), code.String()))
}

// corruptionTotal counts requests rejected because a shard latched corrupted.
var corruptionTotal = metrics.NewCounter(`gkv_corruption_errors_total`)

// requestDuration tracks request handling latency per operation type.
func requestDuration(op common.MessageType) *metrics.Summary {
	return metrics.GetOrCreateSummary(fmt.Sprintf(`gkv_rpc_request_duration_seconds{op=%q}`, op.String()))
}

// openIterators reports the number of open server-side iterators of a shard.
func trackOpenIterators(shardID uint64, registry *iteratorRegistry) {
	metrics.GetOrCreateGauge(
		fmt.Sprintf(`gkv_open_iterators{shard="%d"}`, shardID),
		func() float64 { return float64(registry.size()) },
	)
}

// observeResponse records the outcome of a handled request.
func observeResponse(op common.MessageType, start time.Time, resp *common.Message) {
	requestsTotal(op).Inc()
	requestDuration(op).UpdateDuration(start)

	if resp.Err != "" || resp.ErrCode != uint64(db.RetCSuccess) {
		code := db.RetCode(resp.ErrCode)
		errorsTotal(op, code).Inc()
		if code == db.RetCCorruption {
			corruptionTotal.Inc()
		}
	}
}

// --------------------------------------------------------------------------
// Metrics Endpoint
// --------------------------------------------------------------------------

// serveMetrics exposes all collected metrics in Prometheus text format.
func serveMetrics(endpoint string) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	Logger.Infof("Starting metrics server on %s", endpoint)
	if err := http.ListenAndServe(endpoint, mux); err != nil {
		Logger.Errorf("Metrics server failed: %v", err)
	}
}
