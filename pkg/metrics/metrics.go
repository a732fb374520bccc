package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	transcriber = "transcriber"

	jobsTotal               = "jobs_total"
	jobsStored              = "jobs_stored"
	jobsRunning             = "jobs_running"
	workersBusy             = "workers_busy"
	subscribers             = "subscribers"
	deliveryFailuresTotal   = "event_delivery_failures_total"
	modelFallbacksTotal     = "model_fallbacks_total"
	transcriptionErrorTotal = "transcription_errors_total"
	tokensTotal             = "tokens_total"
	costTotal               = "cost_usd_total"

	// Labels
	jobStatusLabel      = "status"
	errorKindLabel      = "kind"
	tokenDirectionLabel = "direction"
)

/**
* Metrics definition
**/
var jobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      jobsTotal,
		Help:      "number of jobs that reached a lifecycle status",
	},
	[]string{jobStatusLabel},
)

var jobsStoredMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      jobsStored,
		Help:      "number of job records held in memory",
	},
)

var jobsRunningMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      jobsRunning,
		Help:      "number of job runners currently in flight",
	},
)

var workersBusyMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      workersBusy,
		Help:      "number of worker pool slots executing upstream calls",
	},
)

var subscribersMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: transcriber,
		Name:      subscribers,
		Help:      "number of live progress subscribers",
	},
)

var deliveryFailuresMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      deliveryFailuresTotal,
		Help:      "number of progress events that could not be delivered to a subscriber",
	},
)

var modelFallbacksMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      modelFallbacksTotal,
		Help:      "number of generation calls retried on the fallback model after an overload",
	},
)

var transcriptionErrorsMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      transcriptionErrorTotal,
		Help:      "number of failed transcriptions by error kind",
	},
	[]string{errorKindLabel},
)

var tokensMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      tokensTotal,
		Help:      "tokens billed by the upstream model",
	},
	[]string{tokenDirectionLabel},
)

var costMetric = prometheus.NewCounter(
	prometheus.CounterOpts{
		Subsystem: transcriber,
		Name:      costTotal,
		Help:      "estimated cost of all completed transcriptions in USD",
	},
)

func IncreaseJobsTotalMetric(status string) {
	jobsTotalMetric.With(prometheus.Labels{jobStatusLabel: status}).Inc()
}

func UpdateJobsStoredMetric(count int) {
	jobsStoredMetric.Set(float64(count))
}

func IncreaseJobsRunningMetric() {
	jobsRunningMetric.Inc()
}

func DecreaseJobsRunningMetric() {
	jobsRunningMetric.Dec()
}

func UpdateWorkersBusyMetric(count int) {
	workersBusyMetric.Set(float64(count))
}

func UpdateSubscribersMetric(count int) {
	subscribersMetric.Set(float64(count))
}

func IncreaseDeliveryFailuresMetric() {
	deliveryFailuresMetric.Inc()
}

func IncreaseModelFallbacksMetric() {
	modelFallbacksMetric.Inc()
}

func IncreaseTranscriptionErrorsMetric(kind string) {
	transcriptionErrorsMetric.With(prometheus.Labels{errorKindLabel: kind}).Inc()
}

// RecordUsage adds the token counts and cost of one completed transcription.
func RecordUsage(inputTokens, outputTokens int, cost float64) {
	tokensMetric.With(prometheus.Labels{tokenDirectionLabel: "input"}).Add(float64(inputTokens))
	tokensMetric.With(prometheus.Labels{tokenDirectionLabel: "output"}).Add(float64(outputTokens))
	costMetric.Add(cost)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(
		jobsTotalMetric,
		jobsStoredMetric,
		jobsRunningMetric,
		workersBusyMetric,
		subscribersMetric,
		deliveryFailuresMetric,
		modelFallbacksMetric,
		transcriptionErrorsMetric,
		tokensMetric,
		costMetric,
	)
}
