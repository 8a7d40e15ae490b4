package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the analysis service.
type Metrics struct {
	UploadsTotal     prometheus.Counter
	UploadBytes      prometheus.Histogram
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	RejectedRows     prometheus.Counter
	ExportsTotal     prometheus.Counter
	ActiveSessions   prometheus.Gauge
}

// NewMetrics registers the service metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UploadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "salescope_uploads_total",
			Help: "Number of spreadsheet files uploaded",
		}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "salescope_upload_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salescope_analyses_total",
			Help: "Number of analysis runs by type and outcome",
		}, []string{"analysis_type", "outcome"}),
		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salescope_analysis_duration_seconds",
			Help:    "Wall time of analysis runs",
			Buckets: prometheus.DefBuckets,
		}, []string{"analysis_type"}),
		RejectedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "salescope_rejected_rows_total",
			Help: "Rows skipped during aggregation due to bad data",
		}),
		ExportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "salescope_exports_total",
			Help: "Number of report exports generated",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salescope_active_sessions",
			Help: "Analysis sessions currently held in memory",
		}),
	}
}
