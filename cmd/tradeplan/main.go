package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tradeplan/internal/agent"
	"tradeplan/internal/config"
	"tradeplan/internal/cronrunner"
	"tradeplan/internal/events"
	"tradeplan/internal/executor"
	"tradeplan/internal/logger"
	"tradeplan/internal/permission"
	"tradeplan/internal/store"
	"tradeplan/internal/strategy"
)

func main() {
	cfgPath := os.Getenv("TP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if raw := os.Getenv("TP_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st store.Store
	switch strings.ToLower(cfg.Store.Backend) {
	case "", "memory":
		st = store.NewMemoryStore()
	case "redis":
		rs, err := store.NewRedisStore(cfg.Store.Redis)
		if err != nil {
			log.Fatal("redis store init failed", zap.Error(err))
		}
		defer rs.Close()
		st = rs
	default:
		log.Fatal("unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	bus := events.NewBus()
	enforcer := permission.NewEnforcer(st, log, cfg.Permissions)

	// The venue adapter and price feed are injected by the embedding system;
	// standalone the binary only runs in dry-run mode.
	var adapter executor.TradeAdapter
	var source executor.PriceSource
	if cfg.Executor.DryRun {
		adapter = executor.DryRunAdapter{}
		source = constPriceSource{price: decimal.NewFromInt(1)}
	} else {
		log.Fatal("no venue adapter wired; set executor.dry_run or embed the module")
	}
	prices := executor.NewPriceCache(source, cfg.Executor.PriceCacheTTL)
	exec := executor.New(adapter, prices, enforcer, bus, log, cfg.Executor)

	registry := agent.NewRegistry(st, enforcer, bus, prices, log, cfg.Agents)

	// Dry-run smoke pass: a two-slice TWAP against the fake venue proves the
	// wiring before any real adapter is injected.
	go func() {
		plan := strategy.TWAP("startup-smoke", "SOL", decimal.NewFromInt(1), 2, time.Second)
		res, err := exec.Execute(ctx, plan, "")
		if err != nil {
			log.Warn("smoke run failed", zap.Error(err))
			return
		}
		log.Info("smoke run finished",
			zap.String("status", string(res.Status)),
			zap.Int("steps_completed", res.StepsCompleted),
		)
	}()

	runner := cronrunner.New(log, ctx)
	if cfg.Cron.Enabled {
		if _, err := runner.Add("permission_cleanup", cfg.Cron.PermissionCleanup, func(ctx context.Context) error {
			_, err := enforcer.CleanupExpired(ctx)
			return err
		}); err != nil {
			log.Fatal("schedule permission cleanup failed", zap.Error(err))
		}
		if _, err := runner.Add("position_refresh", cfg.Cron.PositionRefresh, registry.RefreshMarks); err != nil {
			log.Fatal("schedule position refresh failed", zap.Error(err))
		}
		runner.Start()
		defer runner.Stop()
	}

	go logEvents(ctx, log, bus)

	log.Info("control plane up",
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("dry_run", cfg.Executor.DryRun),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")
	cancel()
}

func logEvents(ctx context.Context, log *zap.Logger, bus *events.Bus) {
	ch := bus.SubscribeAll(256)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			log.Debug("event",
				zap.String("type", string(ev.Type)),
				zap.String("agent_id", ev.AgentID),
				zap.String("strategy_id", ev.StrategyID),
				zap.String("step_id", ev.StepID),
			)
		}
	}
}

// constPriceSource backs dry-run mode with a fixed quote.
type constPriceSource struct {
	price decimal.Decimal
}

func (c constPriceSource) GetPrice(context.Context, string) (decimal.Decimal, error) {
	return c.price, nil
}
