package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TaskProcessed    *prometheus.CounterVec
	APIErrors        prometheus.Counter
	RequestSeconds   *prometheus.HistogramVec
	ActiveWorkers    prometheus.Gauge
	GeocodeCache     *prometheus.CounterVec
	DirectoryQueries *prometheus.CounterVec
	Bookings         *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		TaskProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "swasthya_geocoding_tasks_processed_total",
			Help: "Total number of hospital addresses processed by the coordinate backfill.",
		}, []string{"status"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "swasthya_geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "swasthya_geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "swasthya_geocoding_active_workers",
			Help: "Current number of active workers backfilling coordinates.",
		}),
		GeocodeCache: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "swasthya_geocode_cache_lookups_total",
			Help: "Geocode cache lookups by result.",
		}, []string{"result"}),
		DirectoryQueries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "swasthya_directory_queries_total",
			Help: "Hospital listing queries by view and whether a reference location was supplied.",
		}, []string{"view", "reference"}),
		Bookings: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "swasthya_bookings_created_total",
			Help: "Bookings created by kind.",
		}, []string{"kind"}),
	}
}
