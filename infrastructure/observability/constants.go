package observability

// Metric namespace
const (
	MetricNamespace = "betpool"
	meterName       = "betpool"
)

// Instrument names. The prometheus exporter prefixes the namespace and adds
// _total to counters.
const (
	OperationsTotal         = "operations"
	OperationDuration       = "operation_duration_seconds"
	SettlementsTotal        = "settlements"
	SettlementPayoutAmount  = "settlement_payout_amount"
	SettlementForfeitAmount = "settlement_forfeited_amount"
	EventsPublishedTotal    = "events_published"
	EventsFailedTotal       = "events_failed"
)

// Exporter types pushing alongside the prometheus reader
const (
	ExporterNone    = "none"
	ExporterOTLP    = "otlp"
	ExporterConsole = "console"
)

// Label keys
const (
	LabelOperation = "operation"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelPolicy    = "policy"
)

// Operation outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeRejected   = "rejected"
	OutcomeFailed     = "failed"
	OutcomeUnexpected = "unexpected"
)
