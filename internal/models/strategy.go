package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StrategyStatus string

const (
	StrategyPending   StrategyStatus = "pending"
	StrategyRunning   StrategyStatus = "running"
	StrategyPaused    StrategyStatus = "paused"
	StrategyCompleted StrategyStatus = "completed"
	StrategyFailed    StrategyStatus = "failed"
	StrategyCancelled StrategyStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s StrategyStatus) Terminal() bool {
	switch s {
	case StrategyCompleted, StrategyFailed, StrategyCancelled:
		return true
	}
	return false
}

// Strategy type tags produced by the builder and the template library.
const (
	StrategyTypeCustom      = "custom"
	StrategyTypeScaleIn     = "scale_in"
	StrategyTypeScaleOut    = "scale_out"
	StrategyTypeSnipeExit   = "snipe_exit"
	StrategyTypeTWAP        = "twap"
	StrategyTypeDCA         = "dca"
	StrategyTypeLadder      = "ladder"
	StrategyTypeRotation    = "rotation"
	StrategyTypeAccumulate  = "accumulate"
	StrategyTypePumpDefense = "pump_defense"
)

// Strategy is a declarative trading plan: an ordered set of triggered steps
// plus budget and risk configuration for one target asset. It is immutable
// once built except for Status and per-step Completed/Result, which only the
// executor mutates during a run.
type Strategy struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TargetAsset string         `json:"target_asset"`
	Steps       []Step         `json:"steps"`
	Config      StrategyConfig `json:"config"`
	Status      StrategyStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StrategyConfig carries run-level budget and risk limits. Zero values mean
// "not set": a zero StopLossPct disables the stop-loss check, and so on.
type StrategyConfig struct {
	BudgetSOL      decimal.Decimal `json:"budget_sol"`
	MaxSlippagePct decimal.Decimal `json:"max_slippage_pct"`
	StopLossPct    decimal.Decimal `json:"stop_loss_pct"`
	TakeProfitPct  decimal.Decimal `json:"take_profit_pct"`
	Wallets        []string        `json:"wallets,omitempty"`

	StartDelay         time.Duration `json:"start_delay"`
	StepDelay          time.Duration `json:"step_delay"`
	MaxDuration        time.Duration `json:"max_duration"`
	PriceCheckInterval time.Duration `json:"price_check_interval"`
}

// StopReason classifies an intentional early stop of a run, separating policy
// stops from ordinary error and timeout failures. The result status still
// follows the step outcomes: a stop that leaves steps undone reads as failed.
type StopReason string

const (
	StopNone        StopReason = ""
	StopLoss        StopReason = "stop_loss"
	StopTakeProfit  StopReason = "take_profit"
	StopMaxDuration StopReason = "max_duration"
)

// StrategyResult is the run-level rollup returned by every execution, even
// one that terminates early. Errors is the single place partial-failure
// detail surfaces; Status is the coarse outcome signal.
type StrategyResult struct {
	StrategyID     string          `json:"strategy_id"`
	StepsCompleted int             `json:"steps_completed"`
	TotalSteps     int             `json:"total_steps"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	TotalReceived  decimal.Decimal `json:"total_received"`
	TotalTokens    decimal.Decimal `json:"total_tokens"`
	PnL            decimal.Decimal `json:"pnl"`
	PnLPct         decimal.Decimal `json:"pnl_pct"`
	ExecutionTime  time.Duration   `json:"execution_time"`
	StepResults    []StepResult    `json:"step_results"`
	Errors         []string        `json:"errors,omitempty"`
	Status         StrategyStatus  `json:"status"`
	StopReason     StopReason      `json:"stop_reason,omitempty"`
}
