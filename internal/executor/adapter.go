package executor

import (
	"context"

	"github.com/shopspring/decimal"
)

// TradeAdapter is the external venue adapter. The executor only shapes
// parameters and interprets results; order construction, settlement and
// retry/backoff all live behind this interface.
type TradeAdapter interface {
	CoordinatedBuy(ctx context.Context, params TradeParams) (*TradeResult, error)
	CoordinatedSell(ctx context.Context, params TradeParams) (*TradeResult, error)
}

// PriceSource is the external price feed. It may fail; the price cache
// degrades to the last known value rather than failing a trigger wait.
type PriceSource interface {
	GetPrice(ctx context.Context, asset string) (decimal.Decimal, error)
}

// TradeParams are merged from step override, then strategy config, then
// built-in default, in that precedence order.
type TradeParams struct {
	Asset       string
	AmountSOL   decimal.Decimal
	Percent     decimal.Decimal
	SlippagePct decimal.Decimal
	Venue       string
	Mode        string
	Wallets     []string
}

type TradeResult struct {
	Success          bool
	TotalSolSpent    decimal.Decimal
	TotalSolReceived decimal.Decimal
	TotalTokens      decimal.Decimal
	Errors           []string
}

// DryRunAdapter acknowledges every trade without touching a venue. Wired in
// when executor.dry_run is set, and handy as a default in embeddings that
// inject their own adapter later.
type DryRunAdapter struct{}

func (DryRunAdapter) CoordinatedBuy(_ context.Context, params TradeParams) (*TradeResult, error) {
	return &TradeResult{
		Success:       true,
		TotalSolSpent: params.AmountSOL,
		TotalTokens:   decimal.Zero,
	}, nil
}

func (DryRunAdapter) CoordinatedSell(_ context.Context, params TradeParams) (*TradeResult, error) {
	return &TradeResult{
		Success:          true,
		TotalSolReceived: params.AmountSOL,
	}, nil
}
