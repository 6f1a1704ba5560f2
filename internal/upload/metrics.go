package upload

import "github.com/prometheus/client_golang/prometheus"

var (
	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vireya_scan_submissions_total",
			Help: "Drug recognition submissions by outcome.",
		},
		[]string{"outcome"}, // succeeded|failed|superseded
	)
	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vireya_scan_rejected_files_total",
			Help: "Selected files rejected by validation.",
		},
		[]string{"reason"},
	)
	previewsLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vireya_scan_previews_live",
			Help: "Previews created and not yet revoked.",
		},
	)
)

func init() {
	prometheus.MustRegister(submissions, rejections, previewsLive)
}
