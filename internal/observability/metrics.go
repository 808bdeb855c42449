package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for swath
// extraction and group orchestration.
type Metrics struct {
	FilesAccepted prometheus.Counter
	FilesRejected prometheus.Counter

	BandsExtracted prometheus.Counter
	BandsFailed    prometheus.Counter

	// Orchestration metrics.
	GroupsProcessed *prometheus.CounterVec   // labels: nav_set, outcome={success,failure}
	GroupDuration   *prometheus.HistogramVec // labels: nav_set
	WorkerFaults    *prometheus.CounterVec   // labels: kind={memory,os,interrupt,unknown}
	BatchRunning    prometheus.Gauge

	// Announcement metrics.
	AnnouncementsPublished prometheus.Counter
	AnnouncementErrors     prometheus.Counter
}

// NewMetrics creates and registers all extraction metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "files_accepted_total",
			Help:      "Total input files passing validation.",
		}),
		FilesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "files_rejected_total",
			Help:      "Total input files dropped by classification or validation.",
		}),
		BandsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "bands_extracted_total",
			Help:      "Total bands successfully normalized and written.",
		}),
		BandsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "bands_failed_total",
			Help:      "Total per-variable extraction failures.",
		}),
		GroupsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "groups_processed_total",
			Help:      "Navigation groups processed by nav set and outcome.",
		}, []string{"nav_set", "outcome"}),
		GroupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sounder_etl",
			Name:      "group_duration_seconds",
			Help:      "Duration of one navigation group's full pipeline run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"nav_set"}),
		WorkerFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "worker_faults_total",
			Help:      "Faults caught at the worker boundary by kind.",
		}, []string{"kind"}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sounder_etl",
			Name:      "batch_running",
			Help:      "1 while a batch is being orchestrated, 0 otherwise.",
		}),
		AnnouncementsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "announcements_published_total",
			Help:      "Swath-ready announcements published to the topic.",
		}),
		AnnouncementErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sounder_etl",
			Name:      "announcement_errors_total",
			Help:      "Failed swath-ready announcement publishes.",
		}),
	}

	prometheus.MustRegister(
		m.FilesAccepted,
		m.FilesRejected,
		m.BandsExtracted,
		m.BandsFailed,
		m.GroupsProcessed,
		m.GroupDuration,
		m.WorkerFaults,
		m.BatchRunning,
		m.AnnouncementsPublished,
		m.AnnouncementErrors,
	)

	return m
}

// NewMetricsForTesting creates Metrics with bare collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesAccepted:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "files_accepted_total"}),
		FilesRejected:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "files_rejected_total"}),
		BandsExtracted:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "bands_extracted_total"}),
		BandsFailed:            prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "bands_failed_total"}),
		GroupsProcessed:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "groups_processed_total"}, []string{"nav_set", "outcome"}),
		GroupDuration:          prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "sounder_etl", Name: "group_duration_seconds"}, []string{"nav_set"}),
		WorkerFaults:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "worker_faults_total"}, []string{"kind"}),
		BatchRunning:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sounder_etl", Name: "batch_running"}),
		AnnouncementsPublished: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "announcements_published_total"}),
		AnnouncementErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sounder_etl", Name: "announcement_errors_total"}),
	}
}
