// Package metrics holds the Prometheus collectors for background jobs and
// billing reminders.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
	billingMessages    *prometheus.CounterVec
	membersDeactivated prometheus.Counter
	reportsGenerated   prometheus.Counter
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the collectors registered on prometheus.DefaultRegisterer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymdesk_job_runs_total",
				Help: "Background job runs by job name and result.",
			},
			[]string{"job", "result"}, // ok | error
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gymdesk_job_duration_seconds",
				Help:    "Background job duration.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		billingMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gymdesk_billing_messages_total",
				Help: "Billing reminders handed to the WhatsApp gateway, by result.",
			},
			[]string{"result"}, // sent | failed | unmarked
		),
		membersDeactivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_members_deactivated_total",
			Help: "Members moved to pending by the activity sweep or a payment update.",
		}),
		reportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_daily_reports_generated_total",
			Help: "Daily report snapshots (re)computed.",
		}),
	}

	registerer.MustRegister(
		m.jobRuns,
		m.jobDuration,
		m.billingMessages,
		m.membersDeactivated,
		m.reportsGenerated,
	)
	return m
}

func (m *Metrics) ObserveJob(job string, took time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(took.Seconds())
}

func (m *Metrics) BillingSent() {
	if m == nil {
		return
	}
	m.billingMessages.WithLabelValues("sent").Inc()
}

func (m *Metrics) BillingFailed() {
	if m == nil {
		return
	}
	m.billingMessages.WithLabelValues("failed").Inc()
}

// BillingUnmarked counts reminders the gateway accepted but that could not be
// flagged as sent; they go out again on the next cycle.
func (m *Metrics) BillingUnmarked() {
	if m == nil {
		return
	}
	m.billingMessages.WithLabelValues("unmarked").Inc()
}

func (m *Metrics) MemberDeactivated() {
	if m == nil {
		return
	}
	m.membersDeactivated.Inc()
}

func (m *Metrics) ReportGenerated() {
	if m == nil {
		return
	}
	m.reportsGenerated.Inc()
}
