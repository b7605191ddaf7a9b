// Package metrics expone contadores Prometheus del motor de ventas.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-api/internal/application/sales"
)

// Nombres de métricas.
const (
	MetricSalesCreated  = "pos_sales_created_total"
	MetricSalesUpdated  = "pos_sales_updated_total"
	MetricSalesVoided   = "pos_sales_voided_total"
	MetricSalesRejected = "pos_sales_rejected_total"
	MetricSaleAmount    = "pos_sale_total_amount"
)

var _ sales.Recorder = (*SalesMetrics)(nil)

// SalesMetrics implementa sales.Recorder sobre un registry propio.
type SalesMetrics struct {
	registry *prometheus.Registry

	created  prometheus.Counter
	updated  prometheus.Counter
	voided   prometheus.Counter
	rejected *prometheus.CounterVec
	amount   prometheus.Histogram
}

// NewSalesMetrics registra las métricas de ventas junto con las del runtime de Go.
func NewSalesMetrics() *SalesMetrics {
	m := &SalesMetrics{
		registry: prometheus.NewRegistry(),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSalesCreated,
			Help: "Ventas registradas.",
		}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSalesUpdated,
			Help: "Ventas editadas.",
		}),
		voided: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricSalesVoided,
			Help: "Ventas anuladas.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSalesRejected,
			Help: "Operaciones de venta rechazadas por operación y motivo.",
		}, []string{"op", "reason"}),
		amount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricSaleAmount,
			Help:    "Importe total de las ventas registradas (soles).",
			Buckets: []float64{5, 10, 20, 50, 100, 200, 500, 1000, 5000},
		}),
	}
	m.registry.MustRegister(
		m.created, m.updated, m.voided, m.rejected, m.amount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *SalesMetrics) SaleCreated(total decimal.Decimal) {
	m.created.Inc()
	m.amount.Observe(total.InexactFloat64())
}

func (m *SalesMetrics) SaleUpdated(decimal.Decimal) {
	m.updated.Inc()
}

func (m *SalesMetrics) SaleVoided() {
	m.voided.Inc()
}

func (m *SalesMetrics) SaleRejected(op, reason string) {
	m.rejected.WithLabelValues(op, reason).Inc()
}

// Registry devuelve el registry (tests y exporters adicionales).
func (m *SalesMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler handler HTTP de exposición para /metrics.
func (m *SalesMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
