package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeplan/internal/models"
)

// Template defaults. Templates never fail on missing optional parameters:
// every numeric input falls back to one of these.
var (
	// DefaultLevels splits a budget 33/33/34 across price levels 100%, 90%
	// and 80% of the current price.
	DefaultLevels = []Level{
		{Price: decimal.NewFromInt(100), Percent: decimal.NewFromInt(33)},
		{Price: decimal.NewFromInt(90), Percent: decimal.NewFromInt(33)},
		{Price: decimal.NewFromInt(80), Percent: decimal.NewFromInt(34)},
	}

	DefaultInterval    = time.Hour
	DefaultSlices      = 4
	DefaultLadderStep  = decimal.NewFromInt(5)  // percent between rungs
	DefaultPumpGainPct = decimal.NewFromInt(50) // partial take on a pump
	DefaultPumpDropPct = decimal.NewFromInt(20) // full exit on the dump

	hundred = decimal.NewFromInt(100)
)

// Level is one rung of a scaled entry or exit. For entries, Price is the
// level as a percentage of the current price (100 means "now"); for exits it
// is the gain percentage above the current price. Percent is the share of
// budget (entry) or position (exit) committed at that rung.
type Level struct {
	Price   decimal.Decimal
	Percent decimal.Decimal
}

// ScaleIn staggers a budget across falling price levels. A level of 100
// buys immediately; any other level arms a price_below buy at
// currentPrice x level/100.
func ScaleIn(name, asset string, budget, currentPrice decimal.Decimal, levels []Level) *models.Strategy {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	b := NewBuilder(name, asset).
		WithType(models.StrategyTypeScaleIn).
		WithBudget(budget)
	for _, lv := range levels {
		amount := budget.Mul(lv.Percent).Div(hundred)
		if lv.Price.Equal(hundred) {
			b.AddBuy(Immediately(), amount)
			continue
		}
		target := currentPrice.Mul(lv.Price).Div(hundred)
		b.AddBuy(PriceBelow(target), amount)
	}
	return b.Build()
}

// ScaleOut arms a sell-percent at each gain level: price_above at
// currentPrice x (1 + level/100).
func ScaleOut(name, asset string, currentPrice decimal.Decimal, levels []Level) *models.Strategy {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	b := NewBuilder(name, asset).WithType(models.StrategyTypeScaleOut)
	for _, lv := range levels {
		target := currentPrice.Mul(hundred.Add(lv.Price)).Div(hundred)
		b.AddSellPercent(PriceAbove(target), lv.Percent)
	}
	return b.Build()
}

// SnipeAndExit buys immediately and arms two full exits at once: one above at
// the take-profit price, one below at the stop price. Whichever fires first
// executes; the run's risk-limit check halts the loser before it can double-
// exit.
func SnipeAndExit(name, asset string, amount, currentPrice, takeProfitPct, stopLossPct decimal.Decimal) *models.Strategy {
	if takeProfitPct.IsZero() {
		takeProfitPct = DefaultPumpGainPct
	}
	if stopLossPct.IsZero() {
		stopLossPct = DefaultPumpDropPct
	}
	tpPrice := currentPrice.Mul(hundred.Add(takeProfitPct)).Div(hundred)
	slPrice := currentPrice.Mul(hundred.Sub(stopLossPct)).Div(hundred)
	return NewBuilder(name, asset).
		WithType(models.StrategyTypeSnipeExit).
		WithBudget(amount).
		WithTakeProfit(takeProfitPct).
		WithStopLoss(stopLossPct).
		AddBuy(Immediately(), amount).
		AddSellPercent(PriceAbove(tpPrice), hundred).
		AddSellPercent(PriceBelow(slPrice), hundred).
		Build()
}

// TWAP splits a total evenly across n time slices: the first immediate, each
// later slice triggered at the previous slice's timestamp plus interval.
// Defaults: 4 slices, 1h interval.
func TWAP(name, asset string, total decimal.Decimal, slices int, interval time.Duration) *models.Strategy {
	return timeSliced(name, asset, models.StrategyTypeTWAP, total, slices, interval)
}

// DCA is a TWAP tagged as dollar-cost averaging; the default interval suits
// long accumulation rather than intraday execution.
func DCA(name, asset string, total decimal.Decimal, slices int, interval time.Duration) *models.Strategy {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return timeSliced(name, asset, models.StrategyTypeDCA, total, slices, interval)
}

// Accumulate is a DCA shape for quiet position building: small even slices,
// daily by default.
func Accumulate(name, asset string, total decimal.Decimal, slices int) *models.Strategy {
	return timeSliced(name, asset, models.StrategyTypeAccumulate, total, slices, 24*time.Hour)
}

func timeSliced(name, asset, typ string, total decimal.Decimal, slices int, interval time.Duration) *models.Strategy {
	if slices <= 0 {
		slices = DefaultSlices
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	slice := total.Div(decimal.NewFromInt(int64(slices)))
	b := NewBuilder(name, asset).
		WithType(typ).
		WithBudget(total).
		AddBuy(Immediately(), slice)
	next := time.Now()
	for i := 1; i < slices; i++ {
		next = next.Add(interval)
		b.AddBuy(At(next), slice)
	}
	return b.Build()
}

// LadderBuy places n evenly-sized buys at evenly-spaced percentage offsets
// below the current price; the first rung is immediate. Default 4 rungs, 5%
// apart.
func LadderBuy(name, asset string, total, currentPrice decimal.Decimal, rungs int, stepPct decimal.Decimal) *models.Strategy {
	if rungs <= 0 {
		rungs = DefaultSlices
	}
	if stepPct.IsZero() {
		stepPct = DefaultLadderStep
	}
	slice := total.Div(decimal.NewFromInt(int64(rungs)))
	b := NewBuilder(name, asset).
		WithType(models.StrategyTypeLadder).
		WithBudget(total).
		AddBuy(Immediately(), slice)
	for i := 1; i < rungs; i++ {
		offset := stepPct.Mul(decimal.NewFromInt(int64(i)))
		target := currentPrice.Mul(hundred.Sub(offset)).Div(hundred)
		b.AddBuy(PriceBelow(target), slice)
	}
	return b.Build()
}

// LadderSell mirrors LadderBuy upward: n even sell-percent rungs at rising
// offsets, first rung immediate.
func LadderSell(name, asset string, currentPrice decimal.Decimal, rungs int, stepPct decimal.Decimal) *models.Strategy {
	if rungs <= 0 {
		rungs = DefaultSlices
	}
	if stepPct.IsZero() {
		stepPct = DefaultLadderStep
	}
	percent := hundred.Div(decimal.NewFromInt(int64(rungs)))
	b := NewBuilder(name, asset).
		WithType(models.StrategyTypeLadder).
		AddSellPercent(Immediately(), percent)
	for i := 1; i < rungs; i++ {
		offset := stepPct.Mul(decimal.NewFromInt(int64(i)))
		target := currentPrice.Mul(hundred.Add(offset)).Div(hundred)
		b.AddSellPercent(PriceAbove(target), percent)
	}
	return b.Build()
}

// Rotation exits one asset into another: a sell-percent against the exit
// asset, then a buy of the full freed budget against the entry asset. Both
// steps carry explicit asset overrides. A zero percent rotates everything.
func Rotation(name, exitAsset, entryAsset string, percent decimal.Decimal) *models.Strategy {
	if percent.IsZero() {
		percent = hundred
	}
	b := NewBuilder(name, entryAsset).
		WithType(models.StrategyTypeRotation).
		AddSellPercent(Immediately(), percent).
		ForAsset(exitAsset)
	sellID := b.LastStepID()
	return b.
		AddBuyPercent(Immediately(), hundred).
		ForAsset(entryAsset).
		DependsOn(sellID).
		Build()
}

// PumpDefense arms a position against a pump-and-dump: take half into the
// pump, exit fully on the dump, and announce that the defense is armed.
// Defaults: partial take at +50%, full exit at -20%.
func PumpDefense(name, asset string, currentPrice, gainPct, dropPct decimal.Decimal) *models.Strategy {
	if gainPct.IsZero() {
		gainPct = DefaultPumpGainPct
	}
	if dropPct.IsZero() {
		dropPct = DefaultPumpDropPct
	}
	takePrice := currentPrice.Mul(hundred.Add(gainPct)).Div(hundred)
	exitPrice := currentPrice.Mul(hundred.Sub(dropPct)).Div(hundred)
	return NewBuilder(name, asset).
		WithType(models.StrategyTypePumpDefense).
		WithStopLoss(dropPct).
		AddNotify(Immediately(), "pump defense armed").
		AddSellPercent(PriceAbove(takePrice), decimal.NewFromInt(50)).
		AddSellPercent(PriceBelow(exitPrice), hundred).
		Build()
}
