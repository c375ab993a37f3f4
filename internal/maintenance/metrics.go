package maintenance

import "github.com/prometheus/client_golang/prometheus"

var (
	retentionRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insightsales_retention_runs_total",
			Help: "Total number of archive retention runs by status.",
		},
		[]string{"status"},
	)
	retentionDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insightsales_retention_deleted_total",
			Help: "Total number of archived objects deleted by retention runs.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		retentionRunsTotal,
		retentionDeletedTotal,
	)
}
