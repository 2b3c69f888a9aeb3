// Package metrics provides Prometheus collector constructors for the
// dispatch service. Collectors are created unregistered; the composition
// root registers them on the process registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewAssignmentsTotal returns a counter for successful driver assignments.
func NewAssignmentsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_assignments_total",
		Help: "Total number of successful driver assignments",
	})
}

// NewNoDriverAvailableTotal returns a counter for assignment attempts that
// found no available driver within the radius.
func NewNoDriverAvailableTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_no_driver_available_total",
		Help: "Total number of assignment attempts with no driver in radius",
	})
}

// NewBroadcastEventsTotal returns a counter for tracking events delivered to
// subscribers.
func NewBroadcastEventsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_broadcast_events_total",
		Help: "Total number of tracking events delivered to subscribers",
	})
}

// NewActiveSubscribers returns a gauge for currently connected tracking
// subscribers across all orders.
func NewActiveSubscribers() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_active_subscribers",
		Help: "Number of currently connected tracking subscribers",
	})
}

// NewStaleDrivers returns a gauge for drivers whose last ping exceeds the
// configured staleness threshold.
func NewStaleDrivers() prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_stale_drivers",
		Help: "Number of drivers with a stale last ping",
	})
}
