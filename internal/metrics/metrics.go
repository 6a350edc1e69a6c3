package metrics

import (
	"github.com/limaJavier/coursescheduler/pkg/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records scheduling runs on a private registry that can be dumped in the Prometheus textfile format
type Metrics struct {
	registry      *prometheus.Registry
	variables     prometheus.Gauge
	constraints   *prometheus.GaugeVec
	courses       prometheus.Gauge
	violations    *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	variables := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_model_variables",
		Help: "Decision variables of the last model built",
	})

	constraints := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_model_constraints",
		Help: "Constraints of the last model built by family",
	}, []string{"family"})

	courses := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_courses",
		Help: "Courses in the last demand scheduled",
	})

	violations := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scheduler_gap_violations",
		Help: "Resource values whose demand exceeds capacity by dimension",
	}, []string{"dimension"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_runs_total",
		Help: "Scheduling runs by solver and outcome",
	}, []string{"solver", "outcome"})

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_solve_duration_seconds",
		Help:    "Time spent by the solver",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"solver"})

	registry.MustRegister(variables, constraints, courses, violations, runs, solveDuration)

	return &Metrics{
		registry:      registry,
		variables:     variables,
		constraints:   constraints,
		courses:       courses,
		violations:    violations,
		runs:          runs,
		solveDuration: solveDuration,
	}
}

// Observe records a finished run
func (m *Metrics) Observe(solver string, demand model.Demand, result model.Result) {
	if m == nil {
		return
	}

	m.variables.Set(float64(result.Variables))
	for _, family := range []model.Family{model.HoursFamily, model.ClassFamily, model.TeacherFamily, model.RoomFamily} {
		m.constraints.WithLabelValues(string(family)).Set(float64(result.Families[family]))
	}
	m.courses.Set(float64(len(demand.Courses)))

	counts := make(map[model.Dimension]int, len(model.Dimensions))
	for _, violation := range result.Gaps.Violations() {
		counts[violation.Dimension]++
	}
	for _, dimension := range model.Dimensions {
		m.violations.WithLabelValues(dimension.String()).Set(float64(counts[dimension]))
	}

	m.runs.WithLabelValues(solver, result.Outcome.String()).Inc()
	m.solveDuration.WithLabelValues(solver).Observe(result.Duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile dumps every metric to path, replacing it atomically
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
