// Package metrics expone las operaciones de stock como métricas Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Obras-api/internal/application/stock"
	"github.com/jhoicas/Obras-api/internal/domain"
)

var _ stock.Recorder = (*Recorder)(nil)

// Recorder implementa stock.Recorder sobre un registry propio.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	moved      *prometheus.CounterVec
}

// NewRecorder registra los colectores (más los de Go y proceso) en un registry nuevo.
func NewRecorder(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_operations_total",
			Help:      "Operaciones de stock por tipo y resultado.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stock_operation_duration_seconds",
			Help:      "Duración de las operaciones de stock.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		moved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_quantity_moved_total",
			Help:      "Cantidad de material movida por tipo de operación.",
		}, []string{"operation"}),
	}
	reg.MustRegister(
		r.operations, r.duration, r.moved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe cuenta la operación con su resultado y registra la duración.
func (r *Recorder) Observe(operation string, started time.Time, err error) {
	r.operations.WithLabelValues(operation, result(err)).Inc()
	r.duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// Moved acumula la cantidad movida.
func (r *Recorder) Moved(operation string, qty decimal.Decimal) {
	r.moved.WithLabelValues(operation).Add(qty.InexactFloat64())
}

// Handler sirve /metrics para este registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry para pruebas.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
