package archive

import "github.com/prometheus/client_golang/prometheus"

var (
	archiveUploadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insightsales_archive_uploads_total",
			Help: "Total number of result snapshots archived to object storage.",
		},
	)
	archiveUploadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "insightsales_archive_upload_failures_total",
			Help: "Total number of failed result archive attempts.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		archiveUploadsTotal,
		archiveUploadFailuresTotal,
	)
}
