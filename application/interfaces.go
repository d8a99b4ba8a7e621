package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsRecorder receives operation and settlement measurements
type MetricsRecorder interface {
	RecordOperation(operation, outcome string, duration time.Duration)
	RecordSettlement(policy string, paid, forfeited decimal.Decimal)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(string, string, time.Duration) {}
func (noopMetrics) RecordSettlement(string, decimal.Decimal, decimal.Decimal) {}
