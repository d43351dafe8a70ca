package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счётчики бота: каскад распознавания, структурирование, регистрации, внешние хранилища.
type Metrics struct {
	CascadeAttempts   *prometheus.CounterVec
	StructurePath     *prometheus.CounterVec
	EmergencyFills    *prometheus.CounterVec
	Registrations     *prometheus.CounterVec
	StoreErrors       *prometheus.CounterVec
	ExtractionSeconds prometheus.Histogram
}

// New регистрирует метрики в reg (nil — глобальный реестр).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		CascadeAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_cascade_attempts_total",
			Help: "Text extraction attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		StructurePath: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_structure_total",
			Help: "Structured field extraction by path (model or regex)",
		}, []string{"path"}),
		EmergencyFills: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_emergency_fills_total",
			Help: "Fields recovered by emergency heuristics",
		}, []string{"field"}),
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_registrations_total",
			Help: "Registration confirmations by result",
		}, []string{"result"}),
		StoreErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hotelbot_store_errors_total",
			Help: "Failed calls to external stores",
		}, []string{"store", "op"}),
		ExtractionSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hotelbot_extraction_duration_seconds",
			Help:    "Duration of the whole document extraction pipeline",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}),
	}
}

func (m *Metrics) Attempt(strategy, outcome string) {
	m.CascadeAttempts.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) Structured(path string) {
	m.StructurePath.WithLabelValues(path).Inc()
}

func (m *Metrics) EmergencyFill(field string) {
	m.EmergencyFills.WithLabelValues(field).Inc()
}

// Registration: result = confirmed | failed | cancelled.
func (m *Metrics) Registration(result string) {
	m.Registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) StoreError(store, op string) {
	m.StoreErrors.WithLabelValues(store, op).Inc()
}

// ObserveExtraction вызывать с time.Now() на старте извлечения.
func (m *Metrics) ObserveExtraction(start time.Time) {
	m.ExtractionSeconds.Observe(time.Since(start).Seconds())
}
