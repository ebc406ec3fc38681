// Package metrics exposes prometheus counters for the invoice lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	FinalizeTotal *prometheus.CounterVec
	StornoTotal   *prometheus.CounterVec
	PDFJobsTotal  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		FinalizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pausalko",
			Name:      "faktura_finalize_total",
			Help:      "Finalize attempts partitioned by outcome.",
		}, []string{"outcome"}),
		StornoTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pausalko",
			Name:      "faktura_storno_total",
			Help:      "Storno attempts partitioned by outcome.",
		}, []string{"outcome"}),
		PDFJobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pausalko",
			Name:      "pdf_jobs_total",
			Help:      "Background PDF jobs partitioned by terminal state.",
		}, []string{"state"}),
	}

	prometheus.MustRegister(m.FinalizeTotal, m.StornoTotal, m.PDFJobsTotal)
	return m
}

func (m *Metrics) IncFinalize(outcome string) {
	if m == nil {
		return
	}
	m.FinalizeTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStorno(outcome string) {
	if m == nil {
		return
	}
	m.StornoTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPDFJob(state string) {
	if m == nil {
		return
	}
	m.PDFJobsTotal.WithLabelValues(state).Inc()
}
