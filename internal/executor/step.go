package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/events"
	"tradeplan/internal/models"
)

// waitTrigger blocks until the step's trigger fires. It returns false on
// timeout, cancellation, or when the run leaves the running state mid-wait;
// the caller decides between skipping the step and ending the run.
func (e *Executor) waitTrigger(ctx context.Context, r *run, s *models.Strategy, step *models.Step) bool {
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = e.Cfg.DefaultStepTimeout
	}

	switch step.Trigger {
	case models.TriggerImmediate, "":
		return true

	case models.TriggerTime:
		d := time.Until(step.TriggerAt)
		if timeout > 0 && d > timeout {
			d = timeout
		}
		return sleep(ctx, d)

	case models.TriggerPriceAbove, models.TriggerPriceBelow:
		interval := s.Config.PriceCheckInterval
		if interval <= 0 {
			interval = e.Cfg.PriceCheckInterval
		}
		if interval <= 0 {
			interval = time.Second
		}
		asset := step.Params.Asset
		if asset == "" {
			asset = s.TargetAsset
		}
		left := false
		fired := pollUntil(ctx, interval, timeout, func() bool {
			if r.Status() != models.StrategyRunning {
				left = true
				return true
			}
			price, err := e.Prices.Get(ctx, asset)
			if err != nil {
				return false
			}
			if step.Trigger == models.TriggerPriceAbove {
				return price.GreaterThanOrEqual(step.TriggerPrice)
			}
			return price.LessThanOrEqual(step.TriggerPrice)
		})
		return fired && !left

	case models.TriggerManual:
		ch := r.gate(step.ID)
		var deadline <-chan time.Time
		if timeout > 0 {
			t := time.NewTimer(timeout)
			defer t.Stop()
			deadline = t.C
		}
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case <-ch:
			return true
		}

	default:
		return false
	}
}

// executeStep dispatches one step and produces its result. wait and cancel
// are bookkeeping no-ops, notify is an observability event; buy and sell go
// through the permission check and the venue adapter with a bounded retry
// loop.
func (e *Executor) executeStep(ctx context.Context, s *models.Strategy, step *models.Step, permissionID string) *models.StepResult {
	result := &models.StepResult{
		StepID:     step.ID,
		ExecutedAt: time.Now().UTC(),
	}

	switch step.Action {
	case models.ActionWait, models.ActionCancel:
		result.Success = true
		return result

	case models.ActionNotify:
		if e.Bus != nil {
			e.Bus.Publish(events.Event{
				Type:       events.StepNotice,
				StrategyID: s.ID,
				StepID:     step.ID,
				Detail:     step.Params.Message,
			})
		}
		result.Success = true
		return result

	case models.ActionBuy, models.ActionSell:
		params := e.mergeParams(s, step)

		if e.Enforcer != nil && permissionID != "" {
			intent := &models.TradeIntent{
				StrategyID: s.ID,
				Action:     step.Action,
				Asset:      params.Asset,
				AmountSOL:  params.AmountSOL,
			}
			check := e.Enforcer.CheckByID(ctx, intent, permissionID)
			if !check.Permitted {
				result.Error = fmt.Sprintf("permission: %s", check.Reason)
				return result
			}
		}

		trade, err := e.callAdapter(ctx, step, params)
		if err != nil {
			result.Error = fmt.Sprintf("adapter: %v", err)
			return result
		}
		result.Success = trade.Success
		result.SolSpent = trade.TotalSolSpent
		result.SolReceived = trade.TotalSolReceived
		result.TokenAmount = trade.TotalTokens
		if !trade.Success {
			msg := "trade rejected"
			if len(trade.Errors) > 0 {
				msg = trade.Errors[0]
			}
			result.Error = fmt.Sprintf("adapter: %s", msg)
			return result
		}

		if e.Enforcer != nil && permissionID != "" && trade.TotalSolSpent.IsPositive() {
			if err := e.Enforcer.RecordUsage(ctx, permissionID, trade.TotalSolSpent); err != nil {
				// The trade happened; a ledger write failure must not unwind it.
				result.Error = fmt.Sprintf("permission: record usage: %v", err)
				if e.Logger != nil {
					e.Logger.Warn("usage ledger write failed",
						zap.String("strategy_id", s.ID),
						zap.String("step_id", step.ID),
						zap.String("amount", trade.TotalSolSpent.String()),
						zap.Error(err),
					)
				}
			}
		}
		return result

	default:
		result.Error = fmt.Sprintf("adapter: unknown action %q", step.Action)
		return result
	}
}

// callAdapter retries a failed trade up to the step's retry budget. Bounded
// by a plain counter; the adapter owns any finer-grained backoff.
func (e *Executor) callAdapter(ctx context.Context, step *models.Step, params TradeParams) (*TradeResult, error) {
	attempts := step.MaxRetries + 1
	var (
		trade *TradeResult
		err   error
	)
	for attempt := 0; attempt < attempts; attempt++ {
		if step.Action == models.ActionBuy {
			trade, err = e.Adapter.CoordinatedBuy(ctx, params)
		} else {
			trade, err = e.Adapter.CoordinatedSell(ctx, params)
		}
		if err == nil && trade != nil && trade.Success {
			return trade, nil
		}
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("adapter returned no result")
	}
	return trade, nil
}

// mergeParams resolves trade parameters with step override first, strategy
// config second, built-in default last.
func (e *Executor) mergeParams(s *models.Strategy, step *models.Step) TradeParams {
	p := TradeParams{
		Asset:       step.Params.Asset,
		AmountSOL:   step.Params.AmountSOL,
		Percent:     step.Params.Percent,
		SlippagePct: step.Params.SlippagePct,
		Venue:       step.Params.Venue,
		Mode:        step.Params.Mode,
		Wallets:     step.Params.Wallets,
	}
	if p.Asset == "" {
		p.Asset = s.TargetAsset
	}
	if p.SlippagePct.IsZero() {
		p.SlippagePct = s.Config.MaxSlippagePct
	}
	if p.SlippagePct.IsZero() {
		p.SlippagePct = decimal.NewFromFloat(e.Cfg.DefaultSlippagePct)
	}
	if len(p.Wallets) == 0 {
		p.Wallets = s.Config.Wallets
	}
	return p
}
