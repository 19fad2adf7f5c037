// Package store holds the control plane's keyed state behind a narrow
// interface so the state machines never touch a concrete backend. The
// in-memory implementation is the default; a Redis implementation exists for
// deployments that share state across processes.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"tradeplan/internal/models"
)

var ErrNotFound = errors.New("store: not found")

// Store is the shared-mutation surface between concurrent strategy runs and
// agents. Implementations must apply IncrUsage as a single atomic
// read-modify-write per bucket key: two runs recording spend for the same
// wallet near-simultaneously must not lose an update.
type Store interface {
	PutPermission(ctx context.Context, p *models.WalletPermission) error
	GetPermission(ctx context.Context, id string) (*models.WalletPermission, error)
	ListPermissions(ctx context.Context) ([]*models.WalletPermission, error)

	IncrUsage(ctx context.Context, bucket string, amount decimal.Decimal) (decimal.Decimal, error)
	GetUsage(ctx context.Context, bucket string) (decimal.Decimal, error)

	PutAgent(ctx context.Context, a *models.AgentConfig) error
	GetAgent(ctx context.Context, id string) (*models.AgentConfig, error)
	ListAgents(ctx context.Context) ([]*models.AgentConfig, error)

	PutPerformance(ctx context.Context, p *models.AgentPerformance) error
	GetPerformance(ctx context.Context, agentID string) (*models.AgentPerformance, error)

	PutPosition(ctx context.Context, p *models.Position) error
	ListPositions(ctx context.Context, agentID string) ([]*models.Position, error)
	DeletePosition(ctx context.Context, agentID, positionID string) error
	ClearPositions(ctx context.Context, agentID string) (int, error)
}
