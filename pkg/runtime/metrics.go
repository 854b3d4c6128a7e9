package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rivet-ui/rivet/pkg/bridge"
)

type metrics struct {
	batchesTotal     prometheus.Counter
	batchFailures    prometheus.Counter
	commandsEmitted  prometheus.Counter
	eventsDispatched prometheus.Counter
	liveInstances    prometheus.Gauge
	batchDuration    prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		batchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "batches_total",
			Help:      "Bridge transactions committed.",
		}),
		batchFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "batch_failures_total",
			Help:      "Bridge transactions cancelled or rejected.",
		}),
		commandsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "commands_total",
			Help:      "View commands emitted to the bridge.",
		}),
		eventsDispatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "events_dispatched_total",
			Help:      "Native events received from the bridge.",
		}),
		liveInstances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "live_instances",
			Help:      "Currently mounted component instances.",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rivet",
			Subsystem: "runtime",
			Name:      "batch_duration_seconds",
			Help:      "Wall time per committed batch.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// instrumentedBridge counts every view command crossing the bridge.
// Transaction control calls pass through uncounted.
type instrumentedBridge struct {
	bridge.NativeBridge
	commands prometheus.Counter
}

func (ib *instrumentedBridge) CreateView(id, typeTag string, props map[string]any) error {
	ib.commands.Inc()
	return ib.NativeBridge.CreateView(id, typeTag, props)
}

func (ib *instrumentedBridge) UpdateView(id string, changedProps map[string]any) error {
	ib.commands.Inc()
	return ib.NativeBridge.UpdateView(id, changedProps)
}

func (ib *instrumentedBridge) DeleteView(id string) error {
	ib.commands.Inc()
	return ib.NativeBridge.DeleteView(id)
}

func (ib *instrumentedBridge) AttachView(id, parentID string, index int) error {
	ib.commands.Inc()
	return ib.NativeBridge.AttachView(id, parentID, index)
}

func (ib *instrumentedBridge) DetachView(id string) error {
	ib.commands.Inc()
	return ib.NativeBridge.DetachView(id)
}

func (ib *instrumentedBridge) SetChildren(id string, orderedChildIDs []string) error {
	ib.commands.Inc()
	return ib.NativeBridge.SetChildren(id, orderedChildIDs)
}

func (ib *instrumentedBridge) AddEventListeners(id string, types []string) error {
	ib.commands.Inc()
	return ib.NativeBridge.AddEventListeners(id, types)
}

func (ib *instrumentedBridge) RemoveEventListeners(id string, types []string) error {
	ib.commands.Inc()
	return ib.NativeBridge.RemoveEventListeners(id, types)
}
