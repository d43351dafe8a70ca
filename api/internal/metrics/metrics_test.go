package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Attempt("original", "weak")
	m.Attempt("original", "weak")
	m.Structured("regex")
	m.EmergencyFill("id_number")
	m.Registration("confirmed")
	m.StoreError("sheets", "append")
	m.ObserveExtraction(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CascadeAttempts.WithLabelValues("original", "weak")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StructurePath.WithLabelValues("regex")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmergencyFills.WithLabelValues("id_number")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("confirmed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreErrors.WithLabelValues("sheets", "append")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
