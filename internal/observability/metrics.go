package observability

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	registry *prometheus.Registry

	FilesIngested    *prometheus.CounterVec
	ParseErrors      prometheus.Counter
	RequestsParsed   prometheus.Counter
	IngestDuration   prometheus.Histogram
	WebsocketClients prometheus.Gauge
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		FilesIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sdklogview",
			Name:      "files_ingested_total",
			Help:      "Log files ingested, by source (upload, watch)",
		}, []string{"source"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdklogview",
			Name:      "parse_errors_total",
			Help:      "Files rejected because they are not recognizable SDK debug logs",
		}),
		RequestsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sdklogview",
			Name:      "requests_parsed_total",
			Help:      "HTTP request records extracted across all parse passes",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sdklogview",
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of a full parse-and-store pass",
			Buckets:   prometheus.DefBuckets,
		}),
		WebsocketClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sdklogview",
			Name:      "websocket_clients",
			Help:      "Currently connected live-update clients",
		}),
	}
	r.MustRegister(m.FilesIngested, m.ParseErrors, m.RequestsParsed, m.IngestDuration, m.WebsocketClients)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
