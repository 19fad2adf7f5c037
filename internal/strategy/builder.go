// Package strategy builds declarative trading plans. The Builder accumulates
// triggered steps into an immutable Strategy document; the template library
// composes it into canned shapes (scale-in, TWAP, snipe+exit, ...). Pure data
// construction: nothing here talks to a venue or a price feed.
package strategy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradeplan/internal/models"
)

// Trigger is the builder-side description of a step's firing condition.
type Trigger struct {
	kind  models.TriggerKind
	price decimal.Decimal
	at    time.Time
}

func Immediately() Trigger                 { return Trigger{kind: models.TriggerImmediate} }
func At(t time.Time) Trigger               { return Trigger{kind: models.TriggerTime, at: t} }
func PriceAbove(p decimal.Decimal) Trigger { return Trigger{kind: models.TriggerPriceAbove, price: p} }
func PriceBelow(p decimal.Decimal) Trigger { return Trigger{kind: models.TriggerPriceBelow, price: p} }
func Manually() Trigger                    { return Trigger{kind: models.TriggerManual} }

// Builder assembles a Strategy step by step. Every mutating method returns
// the receiver so construction reads as a pipeline. Builders are not safe for
// concurrent use; build the strategy, then share it.
type Builder struct {
	s models.Strategy
}

func NewBuilder(name, targetAsset string) *Builder {
	return &Builder{s: models.Strategy{
		ID:          uuid.NewString(),
		Name:        name,
		TargetAsset: targetAsset,
		Status:      models.StrategyPending,
	}}
}

func (b *Builder) WithType(t string) *Builder {
	b.s.Type = t
	return b
}

func (b *Builder) WithBudget(budget decimal.Decimal) *Builder {
	b.s.Config.BudgetSOL = budget
	return b
}

func (b *Builder) WithMaxSlippage(pct decimal.Decimal) *Builder {
	b.s.Config.MaxSlippagePct = pct
	return b
}

func (b *Builder) WithStopLoss(pct decimal.Decimal) *Builder {
	b.s.Config.StopLossPct = pct
	return b
}

func (b *Builder) WithTakeProfit(pct decimal.Decimal) *Builder {
	b.s.Config.TakeProfitPct = pct
	return b
}

func (b *Builder) WithWallets(wallets ...string) *Builder {
	b.s.Config.Wallets = wallets
	return b
}

func (b *Builder) WithStartDelay(d time.Duration) *Builder {
	b.s.Config.StartDelay = d
	return b
}

func (b *Builder) WithStepDelay(d time.Duration) *Builder {
	b.s.Config.StepDelay = d
	return b
}

func (b *Builder) WithMaxDuration(d time.Duration) *Builder {
	b.s.Config.MaxDuration = d
	return b
}

func (b *Builder) WithPriceCheckInterval(d time.Duration) *Builder {
	b.s.Config.PriceCheckInterval = d
	return b
}

func (b *Builder) addStep(action models.StepAction, tr Trigger, params models.StepParams) *Builder {
	step := models.Step{
		ID:           fmt.Sprintf("step_%d", len(b.s.Steps)+1),
		Action:       action,
		Trigger:      tr.kind,
		TriggerPrice: tr.price,
		TriggerAt:    tr.at,
		Params:       params,
	}
	b.s.Steps = append(b.s.Steps, step)
	return b
}

// AddBuy appends a buy of an absolute SOL amount.
func (b *Builder) AddBuy(tr Trigger, amount decimal.Decimal) *Builder {
	return b.addStep(models.ActionBuy, tr, models.StepParams{AmountSOL: amount})
}

// AddBuyPercent appends a buy sized as a percentage of the budget.
func (b *Builder) AddBuyPercent(tr Trigger, percent decimal.Decimal) *Builder {
	return b.addStep(models.ActionBuy, tr, models.StepParams{Percent: percent})
}

// AddSell appends a sell of an absolute token amount.
func (b *Builder) AddSell(tr Trigger, amount decimal.Decimal) *Builder {
	return b.addStep(models.ActionSell, tr, models.StepParams{AmountSOL: amount})
}

// AddSellPercent appends a sell of a percentage of the held position.
func (b *Builder) AddSellPercent(tr Trigger, percent decimal.Decimal) *Builder {
	return b.addStep(models.ActionSell, tr, models.StepParams{Percent: percent})
}

func (b *Builder) AddWait(tr Trigger) *Builder {
	return b.addStep(models.ActionWait, tr, models.StepParams{})
}

func (b *Builder) AddNotify(tr Trigger, message string) *Builder {
	return b.addStep(models.ActionNotify, tr, models.StepParams{Message: message})
}

func (b *Builder) AddCancel(tr Trigger) *Builder {
	return b.addStep(models.ActionCancel, tr, models.StepParams{})
}

// The modifiers below apply to the most recently added step and are no-ops
// on an empty builder.

func (b *Builder) last() *models.Step {
	if len(b.s.Steps) == 0 {
		return nil
	}
	return &b.s.Steps[len(b.s.Steps)-1]
}

// ForAsset overrides the target asset on the last step (rotation and split
// strategies touch two assets).
func (b *Builder) ForAsset(asset string) *Builder {
	if s := b.last(); s != nil {
		s.Params.Asset = asset
	}
	return b
}

func (b *Builder) FromWallets(wallets ...string) *Builder {
	if s := b.last(); s != nil {
		s.Params.Wallets = wallets
	}
	return b
}

func (b *Builder) WithSlippage(pct decimal.Decimal) *Builder {
	if s := b.last(); s != nil {
		s.Params.SlippagePct = pct
	}
	return b
}

func (b *Builder) WithVenue(venue string) *Builder {
	if s := b.last(); s != nil {
		s.Params.Venue = venue
	}
	return b
}

func (b *Builder) WithMode(mode string) *Builder {
	if s := b.last(); s != nil {
		s.Params.Mode = mode
	}
	return b
}

// DependsOn marks the last step as dependent on earlier step ids. A step with
// an unmet dependency is skipped at run time, never executed.
func (b *Builder) DependsOn(stepIDs ...string) *Builder {
	if s := b.last(); s != nil {
		s.DependsOn = append(s.DependsOn, stepIDs...)
	}
	return b
}

func (b *Builder) WithTimeout(d time.Duration) *Builder {
	if s := b.last(); s != nil {
		s.Timeout = d
	}
	return b
}

func (b *Builder) WithRetries(n int) *Builder {
	if s := b.last(); s != nil {
		s.MaxRetries = n
	}
	return b
}

// LastStepID returns the id of the most recently added step, for DependsOn
// wiring. Empty on an empty builder.
func (b *Builder) LastStepID() string {
	if s := b.last(); s != nil {
		return s.ID
	}
	return ""
}

// Build finalizes the strategy. Steps without an explicit asset inherit the
// target asset; a builder that never set a type gets "custom".
func (b *Builder) Build() *models.Strategy {
	s := b.s
	if s.Type == "" {
		s.Type = models.StrategyTypeCustom
	}
	for i := range s.Steps {
		if s.Steps[i].Params.Asset == "" {
			s.Steps[i].Params.Asset = s.TargetAsset
		}
	}
	s.CreatedAt = time.Now().UTC()
	cp := s
	cp.Steps = make([]models.Step, len(s.Steps))
	copy(cp.Steps, s.Steps)
	return &cp
}
