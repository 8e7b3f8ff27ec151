package report

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"
)

type reportCollectors struct {
	tasks      *prometheus.GaugeVec
	urgency    *prometheus.GaugeVec
	priority   *prometheus.GaugeVec
	completion prometheus.Gauge
	overdue    prometheus.Gauge
	generated  prometheus.Gauge
}

func newReportCollectors(res *Result) (*prometheus.Registry, *reportCollectors) {
	c := &reportCollectors{
		tasks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskreport_tasks",
			Help: "Tasks in the daily summary by status.",
		}, []string{"status"}),
		urgency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskreport_tasks_by_urgency",
			Help: "Tasks in the daily summary by urgency label.",
		}, []string{"urgency"}),
		priority: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "taskreport_tasks_by_priority",
			Help: "Tasks in the daily summary by priority.",
		}, []string{"priority"}),
		completion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskreport_completion_ratio",
			Help: "Done tasks over all tasks, 0 when there are none.",
		}),
		overdue: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskreport_overdue_tasks",
			Help: "Tasks past their due date that are not done.",
		}),
		generated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "taskreport_generated_timestamp_seconds",
			Help: "Instant the summary was computed for.",
		}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(c.tasks, c.urgency, c.priority, c.completion, c.overdue, c.generated)

	for _, status := range sectionOrder {
		c.tasks.WithLabelValues(string(status)).Set(float64(res.Metrics.count(status)))
	}
	for _, u := range urgencyOrder {
		c.urgency.WithLabelValues(string(u)).Set(float64(res.UrgencyCounts[u]))
	}
	for _, p := range priorityOrder {
		c.priority.WithLabelValues(string(p)).Set(float64(res.PriorityCounts[p]))
	}
	c.completion.Set(res.Metrics.CompletionRate)
	c.overdue.Set(float64(res.Metrics.OverdueCount))
	c.generated.Set(float64(res.GeneratedAt.Unix()))

	return reg, c
}

// ExportProm writes the report metrics in the Prometheus text format,
// suitable for the node_exporter textfile collector.
func (e *Exporter) ExportProm(res *Result, filename string) error {
	reg, _ := newReportCollectors(res)

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}

	return afero.WriteFile(e.Fs, e.path(filename), buf.Bytes(), 0644)
}
