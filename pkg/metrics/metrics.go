package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "villaops"

const (
	OutcomeCreated      = "created"
	OutcomeSkipped      = "skipped"
	OutcomePrecondition = "precondition"
	OutcomeFailed       = "failed"
)

var (
	once sync.Once

	materializations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "materializations_total",
			Help:      "Job materialization attempts by outcome.",
		},
		[]string{"outcome"},
	)

	materializationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialization_duration_seconds",
			Help:      "Time spent materializing the jobs of one booking.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	tasksCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_created_total",
			Help:      "Tasks committed by category.",
		},
		[]string{"category"},
	)

	unassignedTasks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_unassigned_total",
			Help:      "Tasks committed without any eligible staff member.",
		},
	)

	assignmentConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assignment_confidence",
			Help:      "Confidence of automatic staff assignments.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	watcherEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watcher_events_total",
			Help:      "Booking change notifications seen by the watcher.",
		},
		[]string{"source", "result"},
	)

	kafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages handled by direction and result.",
		},
		[]string{"direction", "topic", "result"},
	)

	kafkaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Time spent publishing or handling one Kafka message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction", "topic"},
	)
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	httpPanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Handler panics recovered by the HTTP server.",
		},
	)
)

const (
	DirectionProduce = "produce"
	DirectionConsume = "consume"

	ResultOK    = "ok"
	ResultError = "error"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			materializations,
			materializationDuration,
			tasksCreated,
			unassignedTasks,
			assignmentConfidence,
			watcherEvents,
			kafkaMessages,
			kafkaDuration,
			httpRequests,
			httpDuration,
			httpPanics,
		)
	})
}

func ObserveMaterialization(outcome string, started time.Time) {
	materializations.WithLabelValues(outcome).Inc()
	materializationDuration.Observe(time.Since(started).Seconds())
}

func IncTaskCreated(category string) {
	tasksCreated.WithLabelValues(category).Inc()
}

func IncUnassigned() {
	unassignedTasks.Inc()
}

func ObserveConfidence(confidence float64) {
	assignmentConfidence.Observe(confidence)
}

func IncWatcherEvent(source, result string) {
	watcherEvents.WithLabelValues(source, result).Inc()
}

func ObserveKafkaMessage(direction, topic string, err error, started time.Time) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	kafkaMessages.WithLabelValues(direction, topic, result).Inc()
	kafkaDuration.WithLabelValues(direction, topic).Observe(time.Since(started).Seconds())
}

func ObserveHTTPRequest(method string, status int, started time.Time) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

func IncHTTPPanic() {
	httpPanics.Inc()
}
