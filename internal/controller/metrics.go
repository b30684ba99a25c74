package controller

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/bridgedns"
	"github.com/yuriy-kovalchuk/yk-bridge-dns/internal/shard"
)

const (
	actionCreate = "create"
	actionDelete = "delete"
)

var operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bridge_dns_operations_total",
		Help: "Bridge DNS record operations by action and outcome.",
	},
	[]string{"action", "outcome"},
)

func init() {
	metrics.Registry.MustRegister(operations)
}

func observe(action string, err error) {
	operations.WithLabelValues(action, outcome(err)).Inc()
}

func outcome(err error) string {
	var perr *bridgedns.ProviderError
	switch {
	case err == nil:
		return "acknowledged"
	case errors.Is(err, bridgedns.ErrTimeout):
		return "timeout"
	case errors.Is(err, shard.ErrNoAssignment):
		return "unresolved"
	case errors.Is(err, bridgedns.ErrInvalidRecord):
		return "invalid"
	case errors.As(err, &perr):
		return "rejected"
	default:
		return "error"
	}
}
