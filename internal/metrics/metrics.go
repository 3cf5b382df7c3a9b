package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters cover the current wake cycle only: suspension restarts the
// process and resets them.

var (
	// Link
	LinkCommandsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "link",
		Name:      "commands_sent_total",
		Help:      "Commands delivered as notifications",
	}, []string{"command"})

	LinkSendFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "link",
		Name:      "send_failures_total",
		Help:      "Commands not delivered, by reason",
	}, []string{"reason"})

	LinkConnections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "link",
		Name:      "connections_total",
		Help:      "Accepted client connections",
	})

	LinkDisconnections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "link",
		Name:      "disconnections_total",
		Help:      "Client disconnections",
	})

	LinkPhase = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "joystick",
		Subsystem: "link",
		Name:      "phase",
		Help:      "Link phase (0=idle 1=advertising 2=connected 3=shutting down)",
	})

	// Activity
	ActivitySamples = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "activity",
		Name:      "samples_total",
		Help:      "Input samples processed",
	})

	ActivityReadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "activity",
		Name:      "read_errors_total",
		Help:      "Input read errors",
	})

	ActivityTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "joystick",
		Subsystem: "activity",
		Name:      "transitions_total",
		Help:      "Command transitions, by new command",
	}, []string{"command"})

	ActivityIdleSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "joystick",
		Subsystem: "activity",
		Name:      "idle_seconds",
		Help:      "Seconds since the last operator activity",
	})
)
