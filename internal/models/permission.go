package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet action capabilities. Buy and sell intents both map onto ActionSwap;
// the order and position actions map one to one.
const (
	PermActionSwap          = "swap"
	PermActionPlaceOrder    = "place_order"
	PermActionCancelOrder   = "cancel_order"
	PermActionClosePosition = "close_position"
)

// PermissionLimits bound what a single permission grant may spend. A zero
// limit means unlimited for that bound.
type PermissionLimits struct {
	MaxTransactionSOL    decimal.Decimal `json:"max_transaction_sol"`
	DailyLimitSOL        decimal.Decimal `json:"daily_limit_sol"`
	WeeklyLimitSOL       decimal.Decimal `json:"weekly_limit_sol"`
	RequiresApproval     bool            `json:"requires_approval"`
	ApprovalThresholdSOL decimal.Decimal `json:"approval_threshold_sol"`
}

// WalletPermission is a wallet-scoped grant of allowed actions and spend
// limits. It is consulted before every proposed trade and mutated only to
// flip IsActive on revocation or expiry; never resurrected.
type WalletPermission struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	AgentID        string           `json:"agent_id,omitempty"`
	WalletAddress  string           `json:"wallet_address"`
	AllowedActions []string         `json:"allowed_actions"`
	Limits         PermissionLimits `json:"limits"`
	IsActive       bool             `json:"is_active"`

	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Expired reports whether the grant's expiry has passed at the given time.
func (p *WalletPermission) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// Allows reports whether the grant's action set covers the capability.
func (p *WalletPermission) Allows(action string) bool {
	for _, a := range p.AllowedActions {
		if a == action {
			return true
		}
	}
	return false
}

// PermissionCheck is the structured verdict for a proposed trade. A denial is
// a value, not an error: callers must treat permitted=false like an adapter
// failure and record it.
type PermissionCheck struct {
	Permitted       bool             `json:"permitted"`
	Reason          string           `json:"reason,omitempty"`
	RemainingDaily  *decimal.Decimal `json:"remaining_daily,omitempty"`
	RemainingWeekly *decimal.Decimal `json:"remaining_weekly,omitempty"`
}
