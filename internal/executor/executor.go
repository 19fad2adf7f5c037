// Package executor runs declarative strategies: for each step it waits for
// the trigger, consults the permission enforcer, dispatches to the venue
// adapter, records the result, and evaluates stop conditions. Runs are
// cooperative sequences of cancellable waits; pause, resume and cancel are
// state flips observed at the next checkpoint, never preemption of an
// in-flight adapter call.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/config"
	"tradeplan/internal/events"
	"tradeplan/internal/models"
	"tradeplan/internal/permission"
)

var (
	ErrEmptyStrategy  = errors.New("executor: strategy has no steps")
	ErrUnknownRun     = errors.New("executor: no active run for strategy")
	ErrInvalidState   = errors.New("executor: invalid state transition")
	ErrAlreadyRunning = errors.New("executor: strategy already running")
)

type Executor struct {
	Adapter  TradeAdapter
	Prices   *PriceCache
	Enforcer *permission.Enforcer
	Bus      *events.Bus
	Logger   *zap.Logger
	Cfg      config.ExecutorConfig

	mu   sync.Mutex
	runs map[string]*run
}

func New(adapter TradeAdapter, prices *PriceCache, enforcer *permission.Enforcer, bus *events.Bus, logger *zap.Logger, cfg config.ExecutorConfig) *Executor {
	return &Executor{
		Adapter:  adapter,
		Prices:   prices,
		Enforcer: enforcer,
		Bus:      bus,
		Logger:   logger,
		Cfg:      cfg,
		runs:     map[string]*run{},
	}
}

// run is the process-local control block for one executing strategy. Manual
// trigger gates live here; the keyed stores hold everything durable.
type run struct {
	mu     sync.Mutex
	status models.StrategyStatus
	manual map[string]chan struct{}
}

func (r *run) Status() models.StrategyStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *run) set(status models.StrategyStatus) {
	r.mu.Lock()
	r.status = status
	r.mu.Unlock()
}

func (r *run) gate(stepID string) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gateLocked(stepID)
}

func (r *run) gateLocked(stepID string) chan struct{} {
	ch, ok := r.manual[stepID]
	if !ok {
		ch = make(chan struct{})
		r.manual[stepID] = ch
	}
	return ch
}

// fire closes a gate exactly once. The check and the close stay under the
// mutex so concurrent callers cannot double-close.
func (r *run) fire(stepID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := r.gateLocked(stepID)
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func (e *Executor) register(strategyID string, r *run) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.runs[strategyID]; exists {
		return ErrAlreadyRunning
	}
	e.runs[strategyID] = r
	return nil
}

func (e *Executor) deregister(strategyID string) {
	e.mu.Lock()
	delete(e.runs, strategyID)
	e.mu.Unlock()
}

func (e *Executor) lookup(strategyID string) (*run, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.runs[strategyID]
	if !ok {
		return nil, ErrUnknownRun
	}
	return r, nil
}

// Status reports the live status of an active run, or the strategy's own
// terminal status once the run has ended.
func (e *Executor) Status(strategyID string) (models.StrategyStatus, bool) {
	r, err := e.lookup(strategyID)
	if err != nil {
		return "", false
	}
	return r.Status(), true
}

// Pause suspends a running strategy before its next step. Only valid from
// running.
func (e *Executor) Pause(strategyID string) error {
	r, err := e.lookup(strategyID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != models.StrategyRunning {
		return fmt.Errorf("%w: pause from %s", ErrInvalidState, r.status)
	}
	r.status = models.StrategyPaused
	return nil
}

// Resume lifts a pause. Only valid from paused.
func (e *Executor) Resume(strategyID string) error {
	r, err := e.lookup(strategyID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status != models.StrategyPaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidState, r.status)
	}
	r.status = models.StrategyRunning
	return nil
}

// Cancel ends a run from any non-terminal state, including paused. The run
// loop observes it at its next checkpoint.
func (e *Executor) Cancel(strategyID string) error {
	r, err := e.lookup(strategyID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status.Terminal() {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidState, r.status)
	}
	r.status = models.StrategyCancelled
	return nil
}

// Trigger fires a pending manual gate for one step of an active run.
func (e *Executor) Trigger(strategyID, stepID string) error {
	r, err := e.lookup(strategyID)
	if err != nil {
		return err
	}
	r.fire(stepID)
	if e.Bus != nil {
		e.Bus.Publish(events.Event{Type: events.ManualTrigger, StrategyID: strategyID, StepID: stepID})
	}
	return nil
}

// Execute runs a strategy to completion and always returns a StrategyResult,
// even for a run that terminates early. Calling it again on the same
// strategy re-runs from step zero; cross-run resumption belongs to the
// caller. permissionID scopes every buy/sell through the enforcer; empty
// skips the check.
func (e *Executor) Execute(ctx context.Context, s *models.Strategy, permissionID string) (*models.StrategyResult, error) {
	if s == nil || len(s.Steps) == 0 {
		return nil, ErrEmptyStrategy
	}

	r := &run{status: models.StrategyRunning, manual: map[string]chan struct{}{}}
	if err := e.register(s.ID, r); err != nil {
		return nil, err
	}
	defer e.deregister(s.ID)

	// A re-run starts clean.
	for i := range s.Steps {
		s.Steps[i].Completed = false
		s.Steps[i].Result = nil
	}

	start := time.Now()
	startUTC := start.UTC()
	s.Status = models.StrategyRunning
	s.StartedAt = &startUTC

	res := &models.StrategyResult{
		StrategyID: s.ID,
		TotalSteps: len(s.Steps),
	}
	if e.Logger != nil {
		e.Logger.Info("strategy run started",
			zap.String("strategy_id", s.ID),
			zap.String("type", s.Type),
			zap.Int("steps", len(s.Steps)),
		)
	}
	if e.Bus != nil {
		e.Bus.Publish(events.Event{Type: events.StrategyStarted, StrategyID: s.ID})
	}

	stop := models.StopNone
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("panic: %v", rec))
				r.set(models.StrategyFailed)
				if e.Logger != nil {
					e.Logger.Error("strategy run panicked",
						zap.String("strategy_id", s.ID),
						zap.Any("panic", rec),
					)
				}
			}
		}()

		if !sleep(ctx, s.Config.StartDelay) {
			r.set(models.StrategyCancelled)
			return
		}

		for i := range s.Steps {
			step := &s.Steps[i]

			switch r.Status() {
			case models.StrategyCancelled, models.StrategyFailed:
				return
			case models.StrategyPaused:
				if !e.waitResume(ctx, r) {
					return
				}
			}
			if ctx.Err() != nil {
				r.set(models.StrategyCancelled)
				return
			}

			if reason, ok := e.unmetDependency(s, step); !ok {
				res.Errors = append(res.Errors, reason)
				continue
			}

			fired := e.waitTrigger(ctx, r, s, step)
			// A pause aborts a price wait; re-arm the same step once resumed.
			for !fired && r.Status() == models.StrategyPaused {
				if !e.waitResume(ctx, r) {
					return
				}
				fired = e.waitTrigger(ctx, r, s, step)
			}
			if !fired {
				if r.Status() != models.StrategyRunning {
					return
				}
				res.Errors = append(res.Errors,
					fmt.Sprintf("timeout: step %s trigger %s did not fire", step.ID, step.Trigger))
				continue
			}

			result := e.executeStep(ctx, s, step, permissionID)
			step.Result = result
			step.Completed = true
			res.StepResults = append(res.StepResults, *result)
			res.TotalSpent = res.TotalSpent.Add(result.SolSpent)
			res.TotalReceived = res.TotalReceived.Add(result.SolReceived)
			res.TotalTokens = res.TotalTokens.Add(result.TokenAmount)
			if result.Success {
				res.StepsCompleted++
			} else {
				res.Errors = append(res.Errors, result.Error)
			}

			if stop = e.riskBreach(s, res, start); stop != models.StopNone {
				if e.Bus != nil {
					e.Bus.Publish(events.Event{
						Type:       events.RiskLimitTriggered,
						StrategyID: s.ID,
						Detail:     string(stop),
					})
				}
				if e.Logger != nil {
					e.Logger.Info("risk limit stopped run",
						zap.String("strategy_id", s.ID),
						zap.String("reason", string(stop)),
					)
				}
				return
			}

			if i < len(s.Steps)-1 && !sleep(ctx, s.Config.StepDelay) {
				r.set(models.StrategyCancelled)
				return
			}
		}
	}()

	e.finalize(s, r, res, stop, start)
	if e.Bus != nil {
		e.Bus.Publish(events.Event{Type: events.StrategyCompleted, StrategyID: s.ID, Detail: res})
	}
	if e.Logger != nil {
		e.Logger.Info("strategy run finished",
			zap.String("strategy_id", s.ID),
			zap.String("status", string(res.Status)),
			zap.Int("steps_completed", res.StepsCompleted),
			zap.String("pnl", res.PnL.String()),
		)
	}
	return res, nil
}

// waitResume blocks while the run is paused. It reports whether the run is
// running again; a pause can be cancelled directly without resuming.
func (e *Executor) waitResume(ctx context.Context, r *run) bool {
	interval := e.Cfg.PausePollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ok := pollUntil(ctx, interval, 0, func() bool {
		return r.Status() != models.StrategyPaused
	})
	return ok && r.Status() == models.StrategyRunning
}

// unmetDependency verifies every dependency completed successfully. A missing
// dependency skips the step, it is not fatal to the run.
func (e *Executor) unmetDependency(s *models.Strategy, step *models.Step) (string, bool) {
	for _, depID := range step.DependsOn {
		ok := false
		for i := range s.Steps {
			dep := &s.Steps[i]
			if dep.ID != depID {
				continue
			}
			ok = dep.Completed && dep.Result != nil && dep.Result.Success
			break
		}
		if !ok {
			return fmt.Sprintf("dependency: step %s requires %s", step.ID, depID), false
		}
	}
	return "", true
}

// riskBreach evaluates the run-level stop conditions after a step: stop-loss
// and take-profit on cumulative PnL%, and the wall-clock maximum duration.
func (e *Executor) riskBreach(s *models.Strategy, res *models.StrategyResult, start time.Time) models.StopReason {
	// PnL is only meaningful once something came back: a fresh buy with no
	// sell yet would always read -100% and trip the stop instantly.
	if res.TotalSpent.IsPositive() && res.TotalReceived.IsPositive() {
		pnlPct := res.TotalReceived.Sub(res.TotalSpent).
			Div(res.TotalSpent).
			Mul(decimal.NewFromInt(100))
		if s.Config.StopLossPct.IsPositive() && pnlPct.LessThanOrEqual(s.Config.StopLossPct.Neg()) {
			return models.StopLoss
		}
		if s.Config.TakeProfitPct.IsPositive() && pnlPct.GreaterThanOrEqual(s.Config.TakeProfitPct) {
			return models.StopTakeProfit
		}
	}
	if s.Config.MaxDuration > 0 && time.Since(start) >= s.Config.MaxDuration {
		return models.StopMaxDuration
	}
	return models.StopNone
}

func (e *Executor) finalize(s *models.Strategy, r *run, res *models.StrategyResult, stop models.StopReason, start time.Time) {
	res.ExecutionTime = time.Since(start)
	res.PnL = res.TotalReceived.Sub(res.TotalSpent)
	if res.TotalSpent.IsPositive() {
		res.PnLPct = res.PnL.Div(res.TotalSpent).Mul(decimal.NewFromInt(100))
	}
	res.StopReason = stop

	switch {
	case r.Status() == models.StrategyCancelled:
		res.Status = models.StrategyCancelled
	case res.StepsCompleted == res.TotalSteps && len(res.Errors) == 0:
		res.Status = models.StrategyCompleted
	default:
		res.Status = models.StrategyFailed
	}

	s.Status = res.Status
	now := time.Now().UTC()
	s.CompletedAt = &now
	r.set(res.Status)
}
