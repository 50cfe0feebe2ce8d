package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	updateRequestsTotal atomic.Uint64
	updateCreatedTotal  atomic.Uint64
	updateRejectedTotal atomic.Uint64
	updateFailedTotal   atomic.Uint64

	updateDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncUpdateRequest increments the received-request counter.
func IncUpdateRequest() {
	updateRequestsTotal.Add(1)
}

// IncUpdateCreated increments the created counter.
func IncUpdateCreated() {
	updateCreatedTotal.Add(1)
}

// IncUpdateRejected increments the model-rejection counter.
func IncUpdateRejected() {
	updateRejectedTotal.Add(1)
}

// IncUpdateFailed increments the failed counter.
func IncUpdateFailed() {
	updateFailedTotal.Add(1)
}

// ObserveUpdateDurationMs records an end-to-end request duration in milliseconds.
func ObserveUpdateDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	updateDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "update_requests_total", "Total update requests received", updateRequestsTotal.Load())
	writeCounter(&buf, "update_created_total", "Total update records created", updateCreatedTotal.Load())
	writeCounter(&buf, "update_rejected_total", "Total updates rejected by the model", updateRejectedTotal.Load())
	writeCounter(&buf, "update_failed_total", "Total update requests failed", updateFailedTotal.Load())
	writeHistogram(&buf, "update_duration_ms", "Update request duration in milliseconds", updateDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
