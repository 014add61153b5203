// Package monitoring exposes process-wide Prometheus metrics for the
// preview runtime. Registration happens once; every renderer instance
// shares the same collectors.
package monitoring

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// Loop metrics
	FramesRendered prometheus.Counter
	TicksScheduled prometheus.Counter
	TicksSkipped   prometheus.Counter

	// Budget metrics
	BudgetExceeded *prometheus.CounterVec

	// Script metrics
	ScriptErrors *prometheus.CounterVec

	// Renderer metrics
	ActiveRenderers prometheus.Gauge
	RenderersTotal  prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics collector.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			FramesRendered: promauto.NewCounter(prometheus.CounterOpts{
				Name: "preview_frames_rendered_total",
				Help: "Total number of frames drawn across all renderers",
			}),
			TicksScheduled: promauto.NewCounter(prometheus.CounterOpts{
				Name: "preview_ticks_scheduled_total",
				Help: "Total number of animation ticks scheduled",
			}),
			TicksSkipped: promauto.NewCounter(prometheus.CounterOpts{
				Name: "preview_ticks_skipped_total",
				Help: "Total number of ticks skipped by degrade stride",
			}),
			BudgetExceeded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "preview_budget_exceeded_total",
					Help: "Budget ceiling crossings by reason",
				},
				[]string{"reason"},
			),
			ScriptErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "preview_script_errors_total",
					Help: "Script failures by stage",
				},
				[]string{"stage"},
			),
			ActiveRenderers: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "preview_active_renderers",
				Help: "Number of currently registered renderers",
			}),
			RenderersTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "preview_renderers_total",
				Help: "Total number of renderers constructed",
			}),
		}
	})
	return instance
}
