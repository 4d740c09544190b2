package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestObserveMaterialization(t *testing.T) {
	before := testutil.ToFloat64(materializations.WithLabelValues(OutcomeCreated))

	ObserveMaterialization(OutcomeCreated, time.Now())

	assert.InDelta(t, before+1, testutil.ToFloat64(materializations.WithLabelValues(OutcomeCreated)), 1e-9)
}

func TestIncWatcherEvent(t *testing.T) {
	before := testutil.ToFloat64(watcherEvents.WithLabelValues("kafka", "ignored"))

	IncWatcherEvent("kafka", "ignored")
	IncWatcherEvent("kafka", "ignored")

	assert.InDelta(t, before+2, testutil.ToFloat64(watcherEvents.WithLabelValues("kafka", "ignored")), 1e-9)
}

func TestObserveKafkaMessage(t *testing.T) {
	ok := kafkaMessages.WithLabelValues(DirectionConsume, "booking-changes", ResultOK)
	failed := kafkaMessages.WithLabelValues(DirectionConsume, "booking-changes", ResultError)
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveKafkaMessage(DirectionConsume, "booking-changes", nil, time.Now())
	ObserveKafkaMessage(DirectionConsume, "booking-changes", errors.New("boom"), time.Now())

	assert.InDelta(t, okBefore+1, testutil.ToFloat64(ok), 1e-9)
	assert.InDelta(t, failedBefore+1, testutil.ToFloat64(failed), 1e-9)
}

func TestIncHTTPPanic(t *testing.T) {
	before := testutil.ToFloat64(httpPanics)

	IncHTTPPanic()

	assert.InDelta(t, before+1, testutil.ToFloat64(httpPanics), 1e-9)
}
