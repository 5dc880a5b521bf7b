package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/feral-file/ff-token-exchange/internal/domain"
)

const (
	RESOLUTION_KIND_BALANCE = "balance"
	RESOLUTION_KIND_NFT     = "nft"

	OUTCOME_OK    = "ok"
	OUTCOME_ERROR = "error"
)

// Recorder collects service telemetry
type Recorder interface {
	// ObserveRPCCall records the latency and outcome of a JSON-RPC call
	ObserveRPCCall(method string, outcome string, duration time.Duration)

	// ObserveResolution records a per-contract balance or ownership outcome
	ObserveResolution(kind string, ok bool)

	// ObserveExchange records a finished exchange attempt
	ObserveExchange(state domain.ExchangeState, reason domain.FailureReason, duration time.Duration)

	// IncLedgerWriteFailure counts transfers that moved funds without crediting the ledger
	IncLedgerWriteFailure()

	// IncReconciliationRequired counts failed attempts whose funds may have moved
	IncReconciliationRequired(reason domain.FailureReason)
}

// PrometheusRecorder implements Recorder with Prometheus collectors
type PrometheusRecorder struct {
	RPCRequests         *prometheus.CounterVec
	RPCLatency          *prometheus.HistogramVec
	Resolutions         *prometheus.CounterVec
	Exchanges           *prometheus.CounterVec
	ExchangeDuration    prometheus.Histogram
	LedgerWriteFailures prometheus.Counter
	Reconciliations     *prometheus.CounterVec
}

// NewPrometheusRecorder registers the service collectors on reg
func NewPrometheusRecorder(namespace string, reg prometheus.Registerer) *PrometheusRecorder {
	if namespace == "" {
		namespace = "ff"
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of JSON-RPC calls by method and outcome",
		}, []string{"method", "outcome"}),
		RPCLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "contract_resolutions_total",
			Help:      "Per-contract balance and ownership resolutions by outcome",
		}, []string{"kind", "outcome"}),
		Exchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "attempts_total",
			Help:      "Exchange attempts by terminal state and failure reason",
		}, []string{"state", "reason"}),
		ExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Exchange attempt duration in seconds, wallet authorization included",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		LedgerWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "ledger_write_failures_total",
			Help:      "Transfers confirmed on-chain whose ledger credit failed and need reconciliation",
		}),
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "reconciliation_required_total",
			Help:      "Failed exchange attempts that may have moved funds, by failure reason",
		}, []string{"reason"}),
	}
}

func (r *PrometheusRecorder) ObserveRPCCall(method string, outcome string, duration time.Duration) {
	r.RPCRequests.WithLabelValues(method, outcome).Inc()
	r.RPCLatency.WithLabelValues(method).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveResolution(kind string, ok bool) {
	outcome := OUTCOME_OK
	if !ok {
		outcome = OUTCOME_ERROR
	}
	r.Resolutions.WithLabelValues(kind, outcome).Inc()
}

func (r *PrometheusRecorder) ObserveExchange(state domain.ExchangeState, reason domain.FailureReason, duration time.Duration) {
	r.Exchanges.WithLabelValues(string(state), string(reason)).Inc()
	r.ExchangeDuration.Observe(duration.Seconds())
}

func (r *PrometheusRecorder) IncLedgerWriteFailure() {
	r.LedgerWriteFailures.Inc()
}

func (r *PrometheusRecorder) IncReconciliationRequired(reason domain.FailureReason) {
	r.Reconciliations.WithLabelValues(string(reason)).Inc()
}

type noopRecorder struct{}

// NewNoopRecorder returns a Recorder that discards everything
func NewNoopRecorder() Recorder {
	return noopRecorder{}
}

func (noopRecorder) ObserveRPCCall(string, string, time.Duration) {}
func (noopRecorder) ObserveResolution(string, bool) {}
func (noopRecorder) ObserveExchange(domain.ExchangeState, domain.FailureReason, time.Duration) {}
func (noopRecorder) IncLedgerWriteFailure() {}
func (noopRecorder) IncReconciliationRequired(domain.FailureReason) {}
