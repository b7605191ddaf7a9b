package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-api/internal/infrastructure/metrics"
)

func TestSalesMetrics_Contadores(t *testing.T) {
	m := metrics.NewSalesMetrics()

	m.SaleCreated(decimal.RequireFromString("35.00"))
	m.SaleCreated(decimal.RequireFromString("7.00"))
	m.SaleUpdated(decimal.RequireFromString("72.25"))
	m.SaleVoided()
	m.SaleRejected("create", "insufficient_stock")
	m.SaleRejected("create", "insufficient_stock")
	m.SaleRejected("void", "already_voided")

	expected := `
# HELP pos_sales_rejected_total Operaciones de venta rechazadas por operación y motivo.
# TYPE pos_sales_rejected_total counter
pos_sales_rejected_total{op="create",reason="insufficient_stock"} 2
pos_sales_rejected_total{op="void",reason="already_voided"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), metrics.MetricSalesRejected))

	count, err := testutil.GatherAndCount(m.Registry(),
		metrics.MetricSalesCreated, metrics.MetricSalesUpdated, metrics.MetricSalesVoided, metrics.MetricSaleAmount)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSalesMetrics_Handler(t *testing.T) {
	m := metrics.NewSalesMetrics()
	m.SaleVoided()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pos_sales_voided_total 1")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
