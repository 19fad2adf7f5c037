package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AgentStatus string

const (
	AgentActive  AgentStatus = "active"
	AgentPaused  AgentStatus = "paused"
	AgentStopped AgentStatus = "stopped"
	AgentError   AgentStatus = "error"
)

// AgentConfig binds a user, a wallet, a strategy-evaluation callback and a
// permission grant into one running agent.
type AgentConfig struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Name         string      `json:"name"`
	StrategyName string      `json:"strategy_name"`
	Wallet       string      `json:"wallet"`
	PermissionID string      `json:"permission_id"`
	Status       AgentStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// AgentPerformance is the mutable rollup updated on every recorded execution.
type AgentPerformance struct {
	AgentID          string          `json:"agent_id"`
	TotalTrades      int             `json:"total_trades"`
	WinningTrades    int             `json:"winning_trades"`
	WinRate          decimal.Decimal `json:"win_rate"`
	TotalPnL         decimal.Decimal `json:"total_pnl"`
	DailyPnL         decimal.Decimal `json:"daily_pnl"`
	WeeklyPnL        decimal.Decimal `json:"weekly_pnl"`
	CurrentPositions int             `json:"current_positions"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Position is one open exposure held by an agent. Added when an entry step
// succeeds, removed when an exit step succeeds or the kill switch fires.
type Position struct {
	ID            string           `json:"id"`
	AgentID       string           `json:"agent_id"`
	Asset         string           `json:"asset"`
	Amount        decimal.Decimal  `json:"amount"`
	EntryPrice    decimal.Decimal  `json:"entry_price"`
	CurrentPrice  decimal.Decimal  `json:"current_price"`
	UnrealizedPnL decimal.Decimal  `json:"unrealized_pnl"`
	StopLoss      *decimal.Decimal `json:"stop_loss,omitempty"`
	TakeProfit    *decimal.Decimal `json:"take_profit,omitempty"`
	OpenedAt      time.Time        `json:"opened_at"`
}

// MarkValue is the position's mark-to-market value at its current price.
func (p *Position) MarkValue() decimal.Decimal {
	return p.Amount.Mul(p.CurrentPrice)
}

// KillReport summarizes an emergency stop: bookkeeping only, the on-chain
// liquidation belongs to the embedding system.
type KillReport struct {
	AgentID         string          `json:"agent_id"`
	PositionsClosed int             `json:"positions_closed"`
	FundsReturned   decimal.Decimal `json:"funds_returned"`
	KilledAt        time.Time       `json:"killed_at"`
}
