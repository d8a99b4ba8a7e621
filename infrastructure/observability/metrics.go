package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// ExportConfig selects where metrics go besides /metrics
type ExportConfig struct {
	ServiceName  string
	Environment  string
	ExporterType string // "", "none", "otlp" or "console"
	OTLPEndpoint string
	Interval     time.Duration
}

// Metrics owns the OpenTelemetry meter provider of the service. The
// prometheus exporter always reads it for /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter

	operationsCounter     metric.Int64Counter
	operationDurationHist metric.Float64Histogram
	settlementsCounter    metric.Int64Counter
	payoutAmountCounter   metric.Float64Counter
	forfeitAmountCounter  metric.Float64Counter
	eventsPublished       metric.Int64Counter
	eventsFailed          metric.Int64Counter
}

// NewMetrics builds the meter provider with a prometheus reader on a private
// registry, plus a periodic push reader when cfg asks for one
func NewMetrics(ctx context.Context, cfg ExportConfig) (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	promExporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithNamespace(MetricNamespace),
		otelprom.WithoutUnits(),
		otelprom.WithoutScopeInfo(),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = meterName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(serviceName),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	options := []sdkmetric.Option{
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(promExporter),
	}

	pushExporter, err := newPushExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if pushExporter != nil {
		interval := cfg.Interval
		if interval <= 0 {
			interval = time.Minute
		}
		options = append(options, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(pushExporter, sdkmetric.WithInterval(interval)),
		))
	}

	provider := sdkmetric.NewMeterProvider(options...)
	m := &Metrics{
		registry:      registry,
		meterProvider: provider,
		meter:         provider.Meter(meterName),
	}
	if err := m.createInstruments(); err != nil {
		_ = provider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}
	return m, nil
}

func newPushExporter(ctx context.Context, cfg ExportConfig) (sdkmetric.Exporter, error) {
	switch cfg.ExporterType {
	case "", ExporterNone:
		return nil, nil

	case ExporterConsole:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")
		return exporter, nil

	case ExporterOTLP:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Infof("Using OTLP metric exporter: %s", cfg.OTLPEndpoint)
		return exporter, nil

	default:
		return nil, fmt.Errorf("unknown exporter type: %s", cfg.ExporterType)
	}
}

func (m *Metrics) createInstruments() error {
	var err error

	m.operationsCounter, err = m.meter.Int64Counter(
		OperationsTotal,
		metric.WithDescription("Application operations by outcome."),
	)
	if err != nil {
		return fmt.Errorf("failed to create operations counter: %w", err)
	}

	m.operationDurationHist, err = m.meter.Float64Histogram(
		OperationDuration,
		metric.WithDescription("Duration of application operations including the transaction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create operation duration histogram: %w", err)
	}

	m.settlementsCounter, err = m.meter.Int64Counter(
		SettlementsTotal,
		metric.WithDescription("Resolved bets by no-winner policy (empty when there were winners)."),
	)
	if err != nil {
		return fmt.Errorf("failed to create settlements counter: %w", err)
	}

	m.payoutAmountCounter, err = m.meter.Float64Counter(
		SettlementPayoutAmount,
		metric.WithDescription("Sum of all payouts and refunds credited by resolutions."),
	)
	if err != nil {
		return fmt.Errorf("failed to create payout amount counter: %w", err)
	}

	m.forfeitAmountCounter, err = m.meter.Float64Counter(
		SettlementForfeitAmount,
		metric.WithDescription("Sum of pools forfeited because nobody backed the winning option."),
	)
	if err != nil {
		return fmt.Errorf("failed to create forfeited amount counter: %w", err)
	}

	m.eventsPublished, err = m.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Domain events published to NATS."),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	m.eventsFailed, err = m.meter.Int64Counter(
		EventsFailedTotal,
		metric.WithDescription("Domain events that could not be published."),
	)
	if err != nil {
		return fmt.Errorf("failed to create events failed counter: %w", err)
	}

	return nil
}

// SetGlobal installs the meter provider as the otel global
func (m *Metrics) SetGlobal() {
	if m == nil {
		return
	}
	otel.SetMeterProvider(m.meterProvider)
}

// Shutdown flushes push readers and stops the meter provider
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.meterProvider.Shutdown(ctx)
}

// Registry exposes the prometheus registry the exporter writes to
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordOperation counts one finished operation and observes its duration
func (m *Metrics) RecordOperation(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	ctx := context.Background()
	m.operationsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelOperation, operation),
		attribute.String(LabelOutcome, outcome),
	))
	m.operationDurationHist.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(LabelOperation, operation),
	))
}

// RecordSettlement adds the money moved by one resolution
func (m *Metrics) RecordSettlement(policy string, paid, forfeited decimal.Decimal) {
	if m == nil {
		return
	}
	ctx := context.Background()
	m.settlementsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String(LabelPolicy, policy)))
	m.payoutAmountCounter.Add(ctx, paid.InexactFloat64())
	m.forfeitAmountCounter.Add(ctx, forfeited.InexactFloat64())
}

// RecordEventPublished counts a published event
func (m *Metrics) RecordEventPublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(LabelEventType, eventType),
	))
}

// RecordEventFailed counts an event that could not be published
func (m *Metrics) RecordEventFailed(eventType string) {
	if m == nil {
		return
	}
	m.eventsFailed.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String(LabelEventType, eventType),
	))
}
