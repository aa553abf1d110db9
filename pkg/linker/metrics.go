package linker

import "github.com/prometheus/client_golang/prometheus"

var (
	classificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linker_classifications_total",
			Help: "Total number of duplicate classifications by result",
		},
		[]string{"result"},
	)

	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linker_submissions_total",
			Help: "Total number of batch submissions by outcome",
		},
		[]string{"status"},
	)

	relationshipsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linker_relationships_created_total",
			Help: "Total number of relationship records created",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(classificationsTotal)
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(relationshipsCreatedTotal)
}

func observeClassification(c Classification) {
	classificationsTotal.WithLabelValues(c.String()).Inc()
}
