package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type serverMetrics struct {
	runsStarted          prometheus.Counter
	runsFailed           prometheus.Counter
	generationsSimulated prometheus.Counter
	wsClients            prometheus.Gauge
}

func newServerMetrics(reg *prometheus.Registry) *serverMetrics {
	factory := promauto.With(reg)
	return &serverMetrics{
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "allopatry_runs_started_total",
			Help: "Number of simulation runs accepted by the server.",
		}),
		runsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "allopatry_runs_failed_total",
			Help: "Number of simulation runs that ended in an error.",
		}),
		generationsSimulated: factory.NewCounter(prometheus.CounterOpts{
			Name: "allopatry_generations_simulated_total",
			Help: "Number of generations simulated across all runs.",
		}),
		wsClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "allopatry_websocket_clients",
			Help: "Currently connected websocket feed clients.",
		}),
	}
}
