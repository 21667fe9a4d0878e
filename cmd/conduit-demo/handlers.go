package main

import (
	"sort"
	"strings"

	"github.com/dogmatiq/conduit/exchange"
	"github.com/dogmatiq/dodeca/logging"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// auditHandler is a protocol handler that logs each message that passes
// through the chain.
type auditHandler struct {
	Logger logging.Logger
}

func (h *auditHandler) HandlerName() string {
	return "audit"
}

func (h *auditHandler) HandleMessage(ctx *exchange.Context) (bool, error) {
	direction := "inbound"
	if ctx.Outbound() {
		direction = "outbound"
	}

	logging.Log(
		h.Logger,
		"%s %s %s (headers: %s)",
		ctx.ID(),
		direction,
		ctx.Operation(),
		headerNames(ctx.Headers()),
	)

	return true, nil
}

func (h *auditHandler) HandleFault(ctx *exchange.Context) (bool, error) {
	logging.Log(
		h.Logger,
		"%s fault %s: %s",
		ctx.ID(),
		ctx.Operation(),
		ctx.Fault(),
	)

	return true, nil
}

func (h *auditHandler) Close(*exchange.Context) error {
	return nil
}

// maintenanceHandler is a logical handler that answers health checks itself
// while maintenance mode is enabled, without consulting the health service.
type maintenanceHandler struct {
	Enabled bool
}

func (h *maintenanceHandler) HandlerName() string {
	return "maintenance"
}

func (h *maintenanceHandler) HandleMessage(ctx *exchange.LogicalContext) (bool, error) {
	if !h.Enabled || ctx.Outbound() {
		return true, nil
	}

	if _, ok := ctx.Payload().(*healthpb.HealthCheckRequest); !ok {
		return true, nil
	}

	ctx.SetPayload(
		&healthpb.HealthCheckResponse{
			Status: healthpb.HealthCheckResponse_NOT_SERVING,
		},
	)

	return false, nil
}

func (h *maintenanceHandler) HandleFault(*exchange.LogicalContext) (bool, error) {
	return true, nil
}

func (h *maintenanceHandler) Close(*exchange.Context) error {
	return nil
}

func headerNames(h map[string][]string) string {
	names := make([]string, 0, len(h))
	for n := range h {
		names = append(names, n)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}
