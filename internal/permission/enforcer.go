// Package permission enforces per-wallet action allow-lists and spend limits.
// Every proposed trade is checked here before it reaches a venue adapter, and
// every executed trade is recorded back into daily and weekly usage ledgers.
package permission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/config"
	"tradeplan/internal/models"
	"tradeplan/internal/store"
)

// Denial reasons returned in PermissionCheck. Stable strings: callers and
// operators match on them.
const (
	ReasonInactive          = "permission_inactive"
	ReasonExpired           = "permission_expired"
	ReasonActionNotAllowed  = "action_not_allowed"
	ReasonExceedsMaxPerTx   = "exceeds_max_transaction"
	ReasonExceedsDaily      = "exceeds_daily_limit"
	ReasonExceedsWeekly     = "exceeds_weekly_limit"
	ReasonRequiresApproval  = "requires_approval"
	ReasonUnknownPermission = "unknown_permission"
)

type Enforcer struct {
	Store    store.Store
	Logger   *zap.Logger
	Defaults config.PermissionsConfig

	// now is swappable in tests.
	now func() time.Time
}

func NewEnforcer(st store.Store, logger *zap.Logger, defaults config.PermissionsConfig) *Enforcer {
	return &Enforcer{Store: st, Logger: logger, Defaults: defaults, now: time.Now}
}

func (e *Enforcer) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// Create registers a new wallet grant. Zero limits and a zero ttl fall back
// to the configured defaults; the grant never expires only when the default
// ttl is also zero.
func (e *Enforcer) Create(ctx context.Context, userID, agentID, wallet string, actions []string, limits models.PermissionLimits, ttl time.Duration) (*models.WalletPermission, error) {
	if limits.MaxTransactionSOL.IsZero() {
		limits.MaxTransactionSOL = decimal.NewFromFloat(e.Defaults.DefaultMaxTransactionSOL)
	}
	if limits.DailyLimitSOL.IsZero() {
		limits.DailyLimitSOL = decimal.NewFromFloat(e.Defaults.DefaultDailyLimitSOL)
	}
	if limits.WeeklyLimitSOL.IsZero() {
		limits.WeeklyLimitSOL = decimal.NewFromFloat(e.Defaults.DefaultWeeklyLimitSOL)
	}
	if len(actions) == 0 {
		actions = []string{models.PermActionSwap}
	}
	if ttl <= 0 {
		ttl = e.Defaults.DefaultTTL
	}
	now := e.clock().UTC()
	p := &models.WalletPermission{
		ID:             uuid.NewString(),
		UserID:         userID,
		AgentID:        agentID,
		WalletAddress:  wallet,
		AllowedActions: actions,
		Limits:         limits,
		IsActive:       true,
		CreatedAt:      now,
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		p.ExpiresAt = &exp
	}
	if err := e.Store.PutPermission(ctx, p); err != nil {
		return nil, err
	}
	if e.Logger != nil {
		e.Logger.Info("permission created",
			zap.String("permission_id", p.ID),
			zap.String("wallet", wallet),
			zap.String("agent_id", agentID),
		)
	}
	return p, nil
}

// capability maps a trade action onto the wallet capability it needs.
// Buy and sell are both generic swaps.
func capability(action models.StepAction) string {
	switch action {
	case models.ActionBuy, models.ActionSell:
		return models.PermActionSwap
	case models.ActionCancel:
		return models.PermActionCancelOrder
	default:
		return string(action)
	}
}

// Check runs the ordered permission checks for a proposed trade, short-
// circuiting on the first failure. A denial is a value, never an error.
func (e *Enforcer) Check(ctx context.Context, intent *models.TradeIntent, p *models.WalletPermission) models.PermissionCheck {
	if p == nil {
		return models.PermissionCheck{Reason: ReasonUnknownPermission}
	}
	if !p.IsActive {
		return models.PermissionCheck{Reason: ReasonInactive}
	}
	now := e.clock()
	if p.Expired(now) {
		return models.PermissionCheck{Reason: ReasonExpired}
	}
	if !p.Allows(capability(intent.Action)) {
		return models.PermissionCheck{Reason: ReasonActionNotAllowed}
	}
	amount := intent.AmountSOL
	if p.Limits.MaxTransactionSOL.IsPositive() && amount.GreaterThan(p.Limits.MaxTransactionSOL) {
		return models.PermissionCheck{Reason: ReasonExceedsMaxPerTx}
	}

	dailyUsed, err := e.Store.GetUsage(ctx, dailyBucket(p.ID, now))
	if err != nil {
		return models.PermissionCheck{Reason: ReasonUnknownPermission}
	}
	weeklyUsed, err := e.Store.GetUsage(ctx, weeklyBucket(p.ID, now))
	if err != nil {
		return models.PermissionCheck{Reason: ReasonUnknownPermission}
	}
	remainingDaily := p.Limits.DailyLimitSOL.Sub(dailyUsed)
	remainingWeekly := p.Limits.WeeklyLimitSOL.Sub(weeklyUsed)

	if p.Limits.DailyLimitSOL.IsPositive() && dailyUsed.Add(amount).GreaterThan(p.Limits.DailyLimitSOL) {
		return models.PermissionCheck{Reason: ReasonExceedsDaily, RemainingDaily: &remainingDaily}
	}
	if p.Limits.WeeklyLimitSOL.IsPositive() && weeklyUsed.Add(amount).GreaterThan(p.Limits.WeeklyLimitSOL) {
		return models.PermissionCheck{Reason: ReasonExceedsWeekly, RemainingWeekly: &remainingWeekly}
	}

	// Approval is a human-in-the-loop gate: headroom never satisfies it.
	if p.Limits.RequiresApproval && p.Limits.ApprovalThresholdSOL.IsPositive() && amount.GreaterThan(p.Limits.ApprovalThresholdSOL) {
		return models.PermissionCheck{Reason: ReasonRequiresApproval}
	}

	return models.PermissionCheck{
		Permitted:       true,
		RemainingDaily:  &remainingDaily,
		RemainingWeekly: &remainingWeekly,
	}
}

// CheckByID resolves the permission and runs Check. An unknown id denies.
func (e *Enforcer) CheckByID(ctx context.Context, intent *models.TradeIntent, permissionID string) models.PermissionCheck {
	p, err := e.Store.GetPermission(ctx, permissionID)
	if err != nil {
		return models.PermissionCheck{Reason: ReasonUnknownPermission}
	}
	return e.Check(ctx, intent, p)
}

// RecordUsage increments both ledgers for a trade that actually executed.
// Call it only after the venue adapter reported success.
func (e *Enforcer) RecordUsage(ctx context.Context, permissionID string, amount decimal.Decimal) error {
	now := e.clock()
	if _, err := e.Store.IncrUsage(ctx, dailyBucket(permissionID, now), amount); err != nil {
		return err
	}
	if _, err := e.Store.IncrUsage(ctx, weeklyBucket(permissionID, now), amount); err != nil {
		return err
	}
	return nil
}

// Revoke deactivates a grant. Usage already recorded stays recorded.
func (e *Enforcer) Revoke(ctx context.Context, permissionID string) error {
	p, err := e.Store.GetPermission(ctx, permissionID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	now := e.clock().UTC()
	p.IsActive = false
	p.RevokedAt = &now
	if err := e.Store.PutPermission(ctx, p); err != nil {
		return err
	}
	if e.Logger != nil {
		e.Logger.Info("permission revoked", zap.String("permission_id", permissionID))
	}
	return nil
}

// CleanupExpired deactivates every grant whose expiry has passed and returns
// the count deactivated. Idempotent: a second sweep finds nothing.
func (e *Enforcer) CleanupExpired(ctx context.Context) (int, error) {
	perms, err := e.Store.ListPermissions(ctx)
	if err != nil {
		return 0, err
	}
	now := e.clock()
	n := 0
	for _, p := range perms {
		if !p.IsActive || !p.Expired(now) {
			continue
		}
		p.IsActive = false
		revoked := now.UTC()
		p.RevokedAt = &revoked
		if err := e.Store.PutPermission(ctx, p); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 && e.Logger != nil {
		e.Logger.Info("expired permissions deactivated", zap.Int("count", n))
	}
	return n, nil
}
