package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/client"
)

// HealthCheck implements ports.HealthChecker against the RPC endpoint. The
// endpoint is only ever used for liveness; no transaction is submitted.
type HealthCheck struct {
	rpc *client.Client
}

// NewHealthCheck creates an RPC health checker.
func NewHealthCheck(endpoint string) *HealthCheck {
	return &HealthCheck{rpc: client.NewClient(endpoint)}
}

// Ping checks RPC connectivity.
func (h *HealthCheck) Ping(ctx context.Context) error {
	_, err := h.rpc.GetVersion(ctx)
	return err
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "solana-rpc"
}
