// Package telemetry collects in-process request and classification metrics and
// serves them in the Prometheus text exposition format.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/firstaid/firstaid/internal/triage"
)

const sep = "|"

// Metrics is safe for concurrent use. The zero value is not usable; call New.
type Metrics struct {
	active          int64
	durationMu      sync.RWMutex
	durations       map[string]*histogram
	cacheLookups    *counterVec
	classifications *counterVec
	cacheHeader     string
}

// New returns an empty Metrics. cacheHeader names the response header that
// reports HIT or MISS.
func New(cacheHeader string) *Metrics {
	return &Metrics{
		durations:       make(map[string]*histogram),
		cacheLookups:    newCounterVec(),
		classifications: newCounterVec(),
		cacheHeader:     cacheHeader,
	}
}

func (m *Metrics) durationFor(key string) *histogram {
	m.durationMu.RLock()
	h, ok := m.durations[key]
	m.durationMu.RUnlock()
	if ok {
		return h
	}
	m.durationMu.Lock()
	defer m.durationMu.Unlock()
	if h, ok = m.durations[key]; !ok {
		h = newHistogram(defaultDurationBuckets)
		m.durations[key] = h
	}
	return h
}

// Middleware records latency per method, route and status, plus cache
// outcomes for responses that carry the cache header.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.active, 1)
			defer atomic.AddInt64(&m.active, -1)
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			res := c.Response()
			key := strings.Join([]string{c.Request().Method, route, strconv.Itoa(res.Status)}, sep)
			m.durationFor(key).Observe(time.Since(start).Seconds())

			if v := res.Header().Get(m.cacheHeader); v != "" {
				m.cacheLookups.inc(route + sep + strings.ToLower(v))
			}
			return nil
		}
	}
}

// Record counts a computed classification. It satisfies emergency.Recorder.
func (m *Metrics) Record(_ context.Context, _ string, res *triage.Result, classifier string) error {
	if res != nil {
		m.classifications.inc(string(res.EmergencyType) + sep + classifier)
	}
	return nil
}

// CacheLookups returns the hit or miss count for route.
func (m *Metrics) CacheLookups(route, result string) int64 {
	return m.cacheLookups.get(route + sep + result)
}

// Classifications returns how many results of type were computed by classifier.
func (m *Metrics) Classifications(emergencyType, classifier string) int64 {
	return m.classifications.get(emergencyType + sep + classifier)
}

// Handler serves the metrics in Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		m.durationMu.RLock()
		keys := make([]string, 0, len(m.durations))
		for k := range m.durations {
			keys = append(keys, k)
		}
		m.durationMu.RUnlock()
		sort.Strings(keys)
		for _, k := range keys {
			parts := strings.SplitN(k, sep, 3)
			labels := fmt.Sprintf("method=%q,route=%q,status_code=%q", parts[0], parts[1], parts[2])
			writeHistogram(&b, "http_server_request_duration_seconds", labels, m.durationFor(k))
		}
		b.WriteByte('\n')

		b.WriteString("# HELP http_server_active_requests Number of in-flight HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n\n", atomic.LoadInt64(&m.active))

		writeCounterVec(&b, "cache_lookups_total", "Cache lookups by route and result.",
			[]string{"route", "result"}, m.cacheLookups)
		writeCounterVec(&b, "classifications_computed_total", "Classifications computed on a cache miss.",
			[]string{"emergency_type", "classifier"}, m.classifications)

		return c.Blob(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(b.String()))
	}
}

func writeCounterVec(b *strings.Builder, name, help string, labelNames []string, v *counterVec) {
	fmt.Fprintf(b, "# HELP %s %s\n", name, help)
	fmt.Fprintf(b, "# TYPE %s counter\n", name)
	snap := v.snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values := strings.SplitN(k, sep, len(labelNames))
		pairs := make([]string, len(values))
		for i, val := range values {
			pairs[i] = fmt.Sprintf("%s=%q", labelNames[i], val)
		}
		fmt.Fprintf(b, "%s{%s} %d\n", name, strings.Join(pairs, ","), snap[k])
	}
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, labels string, h *histogram) {
	cum := h.cumulativeBuckets()
	for i, boundary := range h.boundaries {
		fmt.Fprintf(b, "%s_bucket{%s,le=\"%g\"} %d\n", name, labels, boundary, cum[i])
	}
	total := h.Count()
	fmt.Fprintf(b, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, labels, total)
	fmt.Fprintf(b, "%s_sum{%s} %g\n", name, labels, h.Sum())
	fmt.Fprintf(b, "%s_count{%s} %d\n", name, labels, total)
}
