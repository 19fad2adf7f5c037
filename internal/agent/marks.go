package agent

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/models"
)

// RefreshMarks re-marks every open position from the price feed, recomputing
// unrealized PnL, and closes positions whose per-position stop or target has
// been crossed. Driven by the cron runner; safe to run concurrently with
// strategy runs since all mutation goes through the store.
func (r *Registry) RefreshMarks(ctx context.Context) error {
	if r.Prices == nil {
		return nil
	}
	agents, err := r.Store.ListAgents(ctx)
	if err != nil {
		return err
	}
	for _, a := range agents {
		positions, err := r.Store.ListPositions(ctx, a.ID)
		if err != nil {
			return err
		}
		for _, p := range positions {
			price, err := r.Prices.Get(ctx, p.Asset)
			if err != nil || price.IsZero() {
				continue
			}
			p.CurrentPrice = price
			p.UnrealizedPnL = price.Sub(p.EntryPrice).Mul(p.Amount)
			if err := r.Store.PutPosition(ctx, p); err != nil {
				return err
			}
			if reason := closeReason(p, price); reason != "" {
				if err := r.ClosePosition(ctx, a.ID, p.ID); err != nil {
					return err
				}
				if r.Logger != nil {
					r.Logger.Info("position auto closed",
						zap.String("agent_id", a.ID),
						zap.String("position_id", p.ID),
						zap.String("asset", p.Asset),
						zap.String("reason", reason),
					)
				}
			}
		}
	}
	return nil
}

func closeReason(p *models.Position, price decimal.Decimal) string {
	if p.StopLoss != nil && price.LessThanOrEqual(*p.StopLoss) {
		return "stop_loss"
	}
	if p.TakeProfit != nil && price.GreaterThanOrEqual(*p.TakeProfit) {
		return "take_profit"
	}
	return ""
}
