// Package agent owns agent lifecycle: configuration, status, open positions
// and performance rollups. The registry consumes signals, asks the agent's
// pluggable strategy for a trade intent, and exposes the kill switch. It does
// not execute trades; the permission check and execution happen downstream.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/config"
	"tradeplan/internal/events"
	"tradeplan/internal/models"
	"tradeplan/internal/permission"
	"tradeplan/internal/store"
)

var (
	ErrStrategyNotFound = errors.New("agent: unknown strategy")
	ErrAgentNotFound    = errors.New("agent: unknown agent")
	ErrAgentLimit       = errors.New("agent: per-user agent limit reached")
)

// Strategy is the pluggable evaluation callback an agent runs over incoming
// signals. A nil intent means "no trade".
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, signals []models.Signal) (*models.TradeIntent, error)
}

// PriceGetter is satisfied by executor.PriceCache.
type PriceGetter interface {
	Get(ctx context.Context, asset string) (decimal.Decimal, error)
}

type Registry struct {
	Store    store.Store
	Enforcer *permission.Enforcer
	Bus      *events.Bus
	Prices   PriceGetter
	Logger   *zap.Logger
	Cfg      config.AgentsConfig

	mu         sync.RWMutex
	strategies map[string]Strategy
}

func NewRegistry(st store.Store, enforcer *permission.Enforcer, bus *events.Bus, prices PriceGetter, logger *zap.Logger, cfg config.AgentsConfig) *Registry {
	return &Registry{
		Store:      st,
		Enforcer:   enforcer,
		Bus:        bus,
		Prices:     prices,
		Logger:     logger,
		Cfg:        cfg,
		strategies: map[string]Strategy{},
	}
}

// RegisterStrategy makes a strategy callback available to agents by name.
func (r *Registry) RegisterStrategy(s Strategy) {
	if s == nil || s.Name() == "" {
		return
	}
	r.mu.Lock()
	r.strategies[s.Name()] = s
	r.mu.Unlock()
}

func (r *Registry) strategyByName(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// CreateAgent validates the strategy, registers a wallet grant with the
// enforcer, and initializes empty position and performance state. Killed
// agents do not count against the per-user cap.
func (r *Registry) CreateAgent(ctx context.Context, userID, name, strategyName, wallet string, limits models.PermissionLimits) (*models.AgentConfig, error) {
	if _, ok := r.strategyByName(strategyName); !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, strategyName)
	}
	if r.Cfg.MaxPerUser > 0 {
		agents, err := r.Store.ListAgents(ctx)
		if err != nil {
			return nil, err
		}
		live := 0
		for _, existing := range agents {
			if existing.UserID == userID && existing.Status != models.AgentStopped {
				live++
			}
		}
		if live >= r.Cfg.MaxPerUser {
			return nil, fmt.Errorf("%w: %d", ErrAgentLimit, r.Cfg.MaxPerUser)
		}
	}

	agentID := uuid.NewString()
	perm, err := r.Enforcer.Create(ctx, userID, agentID, wallet,
		[]string{models.PermActionSwap, models.PermActionCancelOrder, models.PermActionClosePosition},
		limits, 0)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &models.AgentConfig{
		ID:           agentID,
		UserID:       userID,
		Name:         name,
		StrategyName: strategyName,
		Wallet:       wallet,
		PermissionID: perm.ID,
		Status:       models.AgentActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Store.PutAgent(ctx, a); err != nil {
		return nil, err
	}
	if err := r.Store.PutPerformance(ctx, &models.AgentPerformance{AgentID: agentID, UpdatedAt: now}); err != nil {
		return nil, err
	}
	if r.Logger != nil {
		r.Logger.Info("agent created",
			zap.String("agent_id", agentID),
			zap.String("strategy", strategyName),
			zap.String("wallet", wallet),
		)
	}
	return a, nil
}

// ProcessSignals feeds signals to the agent's strategy callback. Nil for a
// non-active agent. A produced intent is stamped with a fresh id and the
// agent's identifiers before it is returned.
func (r *Registry) ProcessSignals(ctx context.Context, agentID string, signals []models.Signal) (*models.TradeIntent, error) {
	a, err := r.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, nil
	}
	if a.Status != models.AgentActive {
		return nil, nil
	}
	strat, ok := r.strategyByName(a.StrategyName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, a.StrategyName)
	}

	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: events.SignalReceived, AgentID: agentID, Detail: len(signals)})
	}
	intent, err := strat.Evaluate(ctx, signals)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, nil
	}
	intent.ID = uuid.NewString()
	intent.AgentID = agentID
	intent.StrategyID = a.StrategyName
	intent.Wallet = a.Wallet
	intent.CreatedAt = time.Now().UTC()
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: events.IntentGenerated, AgentID: agentID, Detail: intent})
	}
	return intent, nil
}

// RecordExecution rolls a finished run into the agent's performance. Daily
// and weekly PnL reset when the calendar bucket changes.
func (r *Registry) RecordExecution(ctx context.Context, agentID string, res *models.StrategyResult) error {
	perf, err := r.Store.GetPerformance(ctx, agentID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	now := time.Now().UTC()
	if perf.UpdatedAt.Format("2006-01-02") != now.Format("2006-01-02") {
		perf.DailyPnL = decimal.Zero
	}
	py, pw := perf.UpdatedAt.ISOWeek()
	ny, nw := now.ISOWeek()
	if py != ny || pw != nw {
		perf.WeeklyPnL = decimal.Zero
	}

	perf.TotalTrades++
	if res.PnL.IsPositive() {
		perf.WinningTrades++
	}
	perf.WinRate = decimal.NewFromInt(int64(perf.WinningTrades)).
		Div(decimal.NewFromInt(int64(perf.TotalTrades))).
		Mul(decimal.NewFromInt(100))
	perf.TotalPnL = perf.TotalPnL.Add(res.PnL)
	perf.DailyPnL = perf.DailyPnL.Add(res.PnL)
	perf.WeeklyPnL = perf.WeeklyPnL.Add(res.PnL)
	perf.UpdatedAt = now

	if err := r.Store.PutPerformance(ctx, perf); err != nil {
		return err
	}

	evType := events.ExecutionCompleted
	if res.Status == models.StrategyFailed {
		evType = events.ExecutionFailed
	}
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: evType, AgentID: agentID, StrategyID: res.StrategyID, Detail: res})
	}
	return nil
}

// AddPosition opens an exposure for the agent and keeps the performance
// rollup's position count in sync.
func (r *Registry) AddPosition(ctx context.Context, agentID string, pos *models.Position) error {
	if _, err := r.Store.GetAgent(ctx, agentID); err != nil {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}
	if pos.ID == "" {
		pos.ID = uuid.NewString()
	}
	pos.AgentID = agentID
	if pos.OpenedAt.IsZero() {
		pos.OpenedAt = time.Now().UTC()
	}
	if err := r.Store.PutPosition(ctx, pos); err != nil {
		return err
	}
	if err := r.syncPositionCount(ctx, agentID); err != nil {
		return err
	}
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: events.PositionOpened, AgentID: agentID, Detail: pos})
	}
	return nil
}

// ClosePosition removes an exposure and syncs the rollup.
func (r *Registry) ClosePosition(ctx context.Context, agentID, positionID string) error {
	if err := r.Store.DeletePosition(ctx, agentID, positionID); err != nil {
		return err
	}
	if err := r.syncPositionCount(ctx, agentID); err != nil {
		return err
	}
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: events.PositionClosed, AgentID: agentID, Detail: positionID})
	}
	return nil
}

func (r *Registry) syncPositionCount(ctx context.Context, agentID string) error {
	perf, err := r.Store.GetPerformance(ctx, agentID)
	if err != nil {
		return err
	}
	positions, err := r.Store.ListPositions(ctx, agentID)
	if err != nil {
		return err
	}
	perf.CurrentPositions = len(positions)
	perf.UpdatedAt = time.Now().UTC()
	return r.Store.PutPerformance(ctx, perf)
}

// PauseAgent flips an active agent to paused. False for an unknown agent.
func (r *Registry) PauseAgent(ctx context.Context, agentID string) bool {
	return r.flipStatus(ctx, agentID, models.AgentActive, models.AgentPaused, events.AgentPaused)
}

// ResumeAgent flips a paused agent back to active. False for an unknown agent.
func (r *Registry) ResumeAgent(ctx context.Context, agentID string) bool {
	return r.flipStatus(ctx, agentID, models.AgentPaused, models.AgentActive, events.AgentResumed)
}

func (r *Registry) flipStatus(ctx context.Context, agentID string, from, to models.AgentStatus, evType events.Type) bool {
	a, err := r.Store.GetAgent(ctx, agentID)
	if err != nil {
		return false
	}
	if a.Status != from {
		return false
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	if err := r.Store.PutAgent(ctx, a); err != nil {
		return false
	}
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: evType, AgentID: agentID})
	}
	return true
}

// KillAgent is the emergency stop: status stopped, every position cleared
// with its mark-to-market value summed as funds returned, and the wallet
// grant revoked. Bookkeeping only; on-chain liquidation belongs to the
// embedding system.
func (r *Registry) KillAgent(ctx context.Context, agentID string) (*models.KillReport, error) {
	a, err := r.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, agentID)
	}

	positions, err := r.Store.ListPositions(ctx, agentID)
	if err != nil {
		return nil, err
	}
	funds := decimal.Zero
	for _, p := range positions {
		funds = funds.Add(p.MarkValue())
	}
	closed, err := r.Store.ClearPositions(ctx, agentID)
	if err != nil {
		return nil, err
	}

	a.Status = models.AgentStopped
	a.UpdatedAt = time.Now().UTC()
	if err := r.Store.PutAgent(ctx, a); err != nil {
		return nil, err
	}
	if err := r.syncPositionCount(ctx, agentID); err != nil {
		return nil, err
	}
	if err := r.Enforcer.Revoke(ctx, a.PermissionID); err != nil {
		return nil, err
	}

	report := &models.KillReport{
		AgentID:         agentID,
		PositionsClosed: closed,
		FundsReturned:   funds,
		KilledAt:        time.Now().UTC(),
	}
	if r.Logger != nil {
		r.Logger.Warn("agent killed",
			zap.String("agent_id", agentID),
			zap.Int("positions_closed", closed),
			zap.String("funds_returned", funds.String()),
		)
	}
	if r.Bus != nil {
		r.Bus.Publish(events.Event{Type: events.RiskLimitTriggered, AgentID: agentID, Detail: report})
	}
	return report, nil
}
