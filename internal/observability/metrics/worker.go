package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	processTotal    *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	processInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec

	fieldsResolved *prometheus.CounterVec
	lowOCRTotal    *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	processTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradedocs",
			Subsystem: "worker",
			Name:      "document_process_total",
			Help:      "Total processed documents by status.",
		},
		[]string{"service", "status"},
	)
	processDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradedocs",
			Subsystem: "worker",
			Name:      "document_process_duration_seconds",
			Help:      "Document processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	processInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tradedocs",
			Subsystem: "worker",
			Name:      "document_process_in_flight",
			Help:      "Number of in-flight document processing tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradedocs",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between task enqueue and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	fieldsResolved := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradedocs",
			Subsystem: "resolution",
			Name:      "fields_resolved_total",
			Help:      "Total canonical fields resolved by source layer.",
		},
		[]string{"service", "layer"},
	)
	lowOCRTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradedocs",
			Subsystem: "resolution",
			Name:      "low_ocr_documents_total",
			Help:      "Total documents flagged for low OCR confidence.",
		},
		[]string{"service", "doc_type"},
	)

	registry.MustRegister(
		processTotal,
		processDuration,
		processInFlight,
		queueLag,
		fieldsResolved,
		lowOCRTotal,
	)

	return &WorkerMetrics{
		registry:        registry,
		service:         service,
		processTotal:    processTotal,
		processDuration: processDuration,
		processInFlight: processInFlight,
		queueLag:        queueLag,
		fieldsResolved:  fieldsResolved,
		lowOCRTotal:     lowOCRTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartDocument() {
	m.processInFlight.Inc()
}

func (m *WorkerMetrics) FinishDocument(duration time.Duration, err error) {
	m.processInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.processTotal.WithLabelValues(m.service, status).Inc()
	m.processDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveResolvedField(layer string) {
	if layer == "" {
		return
	}
	m.fieldsResolved.WithLabelValues(m.service, layer).Inc()
}

func (m *WorkerMetrics) ObserveLowOCRDocument(docType string) {
	if docType == "" {
		docType = "unknown"
	}
	m.lowOCRTotal.WithLabelValues(m.service, docType).Inc()
}
