package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Signal is one observation fed to an agent's strategy callback: a price
// move, a whale transfer, a social mention. Payload carries source-specific
// detail the core does not interpret.
type Signal struct {
	Type      string          `json:"type"`
	Source    string          `json:"source,omitempty"`
	Asset     string          `json:"asset,omitempty"`
	Strength  float64         `json:"strength"`
	Direction string          `json:"direction,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeIntent is a proposed trade an agent's strategy callback produced from
// signals. The permission check and execution happen downstream of the
// registry; the registry only stamps identity onto it.
type TradeIntent struct {
	ID         string          `json:"id"`
	AgentID    string          `json:"agent_id"`
	StrategyID string          `json:"strategy_id,omitempty"`
	Action     StepAction      `json:"action"`
	Asset      string          `json:"asset"`
	AmountSOL  decimal.Decimal `json:"amount_sol"`
	Wallet     string          `json:"wallet,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
