// Package metrics exposes Prometheus counters for imports and broadcasts.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/blast/internal/broadcast"
	"github.com/mmynk/blast/internal/roster"
)

// Metrics holds the relay's collectors.
type Metrics struct {
	RosterRows *prometheus.CounterVec
	Sends      *prometheus.CounterVec
	Broadcasts *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RosterRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blast_roster_rows_total",
			Help: "Imported roster rows by outcome.",
		}, []string{"outcome"}),
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blast_sms_sends_total",
			Help: "SMS send attempts by result.",
		}, []string{"result"}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blast_broadcasts_total",
			Help: "Broadcast requests by terminal status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.RosterRows, m.Sends, m.Broadcasts)
	return m
}

// ObserveUpsert records one import batch.
func (m *Metrics) ObserveUpsert(s roster.UpsertSummary) {
	if m == nil {
		return
	}
	m.RosterRows.WithLabelValues("created").Add(float64(s.Created))
	m.RosterRows.WithLabelValues("updated").Add(float64(s.Updated))
	m.RosterRows.WithLabelValues("skipped").Add(float64(s.Skipped))
	m.RosterRows.WithLabelValues("failed").Add(float64(s.Failed))
}

// ObserveDispatch records one broadcast.
func (m *Metrics) ObserveDispatch(s *broadcast.Summary) {
	if m == nil || s == nil {
		return
	}
	m.Broadcasts.WithLabelValues(string(s.Status)).Inc()
	m.Sends.WithLabelValues("success").Add(float64(s.Succeeded))
	m.Sends.WithLabelValues("failure").Add(float64(s.Failed))
}
