package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StepAction string

const (
	ActionBuy    StepAction = "buy"
	ActionSell   StepAction = "sell"
	ActionCancel StepAction = "cancel"
	ActionWait   StepAction = "wait"
	ActionNotify StepAction = "notify"
)

type TriggerKind string

const (
	TriggerImmediate  TriggerKind = "immediate"
	TriggerTime       TriggerKind = "time"
	TriggerPriceAbove TriggerKind = "price_above"
	TriggerPriceBelow TriggerKind = "price_below"
	TriggerManual     TriggerKind = "manual"
)

// Step is one triggered action within a Strategy. Steps are append-only
// within a strategy; the executor mutates a step exactly once, flipping
// Completed and attaching its Result, and never re-executes it in a run.
type Step struct {
	ID      string      `json:"id"`
	Action  StepAction  `json:"action"`
	Trigger TriggerKind `json:"trigger"`

	// TriggerPrice is the threshold for price_above/price_below triggers;
	// TriggerAt is the target timestamp for time triggers.
	TriggerPrice decimal.Decimal `json:"trigger_price,omitempty"`
	TriggerAt    time.Time       `json:"trigger_at,omitempty"`

	Params StepParams `json:"params"`

	DependsOn  []string      `json:"depends_on,omitempty"`
	Timeout    time.Duration `json:"timeout,omitempty"`
	MaxRetries int           `json:"max_retries,omitempty"`

	Completed bool        `json:"completed"`
	Result    *StepResult `json:"result,omitempty"`
}

// StepParams are per-step action parameters. Asset overrides the strategy's
// target asset (rotation and split strategies touch two assets); Amount and
// Percent are mutually exclusive sizing modes.
type StepParams struct {
	Asset       string          `json:"asset,omitempty"`
	AmountSOL   decimal.Decimal `json:"amount_sol,omitempty"`
	Percent     decimal.Decimal `json:"percent,omitempty"`
	Wallets     []string        `json:"wallets,omitempty"`
	SlippagePct decimal.Decimal `json:"slippage_pct,omitempty"`
	Venue       string          `json:"venue,omitempty"`
	Mode        string          `json:"mode,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// StepResult records the outcome of one executed step. Produced exactly once
// per execution; immutable after creation.
type StepResult struct {
	StepID      string          `json:"step_id"`
	Success     bool            `json:"success"`
	SolSpent    decimal.Decimal `json:"sol_spent"`
	SolReceived decimal.Decimal `json:"sol_received"`
	TokenAmount decimal.Decimal `json:"token_amount"`
	ExecutedAt  time.Time       `json:"executed_at"`
	Error       string          `json:"error,omitempty"`
}
