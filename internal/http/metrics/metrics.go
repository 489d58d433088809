package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

type Collector struct {
	requests uint64
	errors   uint64
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) IncRequests() {
	atomic.AddUint64(&c.requests, 1)
}

func (c *Collector) IncErrors() {
	atomic.AddUint64(&c.errors, 1)
}

func (c *Collector) Snapshot() (uint64, uint64) {
	return atomic.LoadUint64(&c.requests), atomic.LoadUint64(&c.errors)
}

func (c *Collector) WriteText(w http.ResponseWriter) {
	requests, errors := c.Snapshot()
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = fmt.Fprintf(w, "# HELP snapfind_requests_total Total number of HTTP requests.\n")
	_, _ = fmt.Fprintf(w, "# TYPE snapfind_requests_total counter\n")
	_, _ = fmt.Fprintf(w, "snapfind_requests_total %d\n", requests)
	_, _ = fmt.Fprintf(w, "# HELP snapfind_errors_total Total number of 5xx HTTP responses.\n")
	_, _ = fmt.Fprintf(w, "# TYPE snapfind_errors_total counter\n")
	_, _ = fmt.Fprintf(w, "snapfind_errors_total %d\n", errors)
}
