package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "familyhub_mutations_total",
	Help: "Mutation gateway calls by entity, operation and outcome.",
}, []string{"entity", "op", "result"})

func recordMutation(entity, op string, res mutationResult) mutationResult {
	outcome := "ok"
	if !res.Success {
		outcome = "error"
		if len(res.Fields) > 0 {
			outcome = "invalid"
		}
	}
	mutationsTotal.WithLabelValues(entity, op, outcome).Inc()
	return res
}
