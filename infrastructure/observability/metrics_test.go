package observability

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	m, err := NewMetrics(context.Background(), ExportConfig{Environment: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m
}

// sample returns the counter value (or histogram sample count) of the series
// of family name carrying exactly labels
func sample(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, series := range family.GetMetric() {
			matched := 0
			for _, pair := range series.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
					matched++
				}
			}
			if matched != len(labels) || len(series.GetLabel()) != len(labels) {
				continue
			}
			if h := series.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return series.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_RecordOperation(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordOperation("join_bet", OutcomeSuccess, 20*time.Millisecond)
	m.RecordOperation("join_bet", OutcomeSuccess, 30*time.Millisecond)
	m.RecordOperation("join_bet", OutcomeRejected, time.Millisecond)

	assert.Equal(t, 2.0, sample(t, m, "betpool_operations_total", map[string]string{
		LabelOperation: "join_bet", LabelOutcome: OutcomeSuccess,
	}))
	assert.Equal(t, 1.0, sample(t, m, "betpool_operations_total", map[string]string{
		LabelOperation: "join_bet", LabelOutcome: OutcomeRejected,
	}))
	assert.Equal(t, 3.0, sample(t, m, "betpool_operation_duration_seconds", map[string]string{
		LabelOperation: "join_bet",
	}))
}

func TestMetrics_RecordSettlement(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordSettlement("", decimal.RequireFromString("60.00"), decimal.Zero)
	m.RecordSettlement("forfeit", decimal.Zero, decimal.RequireFromString("12.50"))

	assert.Equal(t, 60.0, sample(t, m, "betpool_settlement_payout_amount_total", nil))
	assert.Equal(t, 12.5, sample(t, m, "betpool_settlement_forfeited_amount_total", nil))
	assert.Equal(t, 1.0, sample(t, m, "betpool_settlements_total", map[string]string{LabelPolicy: "forfeit"}))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("create_bet", OutcomeSuccess, time.Second)
		m.RecordSettlement("refund", decimal.NewFromInt(1), decimal.Zero)
		m.RecordEventPublished("bet_created")
		m.RecordEventFailed("bet_created")
		m.SetGlobal()
		assert.NoError(t, m.Shutdown(context.Background()))
	})
}

func TestMetrics_UnknownExporter(t *testing.T) {
	_, err := NewMetrics(context.Background(), ExportConfig{ExporterType: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestMetrics_ConsoleExporter(t *testing.T) {
	m, err := NewMetrics(context.Background(), ExportConfig{ExporterType: ExporterConsole, Interval: time.Hour})
	require.NoError(t, err)
	m.RecordEventPublished("bet_created")
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestMetrics_Handler(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordEventPublished("bet_joined")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "betpool_events_published_total")
	assert.Contains(t, rec.Body.String(), `event_type="bet_joined"`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
