package executor

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tradeplan/internal/config"
	"tradeplan/internal/events"
	"tradeplan/internal/models"
	"tradeplan/internal/permission"
	"tradeplan/internal/store"
	"tradeplan/internal/strategy"
)

func testConfig() config.ExecutorConfig {
	return config.ExecutorConfig{
		PriceCheckInterval: 10 * time.Millisecond,
		PriceCacheTTL:      time.Millisecond,
		PausePollInterval:  10 * time.Millisecond,
		DefaultStepTimeout: 2 * time.Second,
		DefaultSlippagePct: 1.0,
	}
}

func newTestExecutor(adapter TradeAdapter, prices PriceSource) *Executor {
	return New(adapter, NewPriceCache(prices, time.Millisecond), nil, nil, nil, testConfig())
}

func TestExecute_AllImmediateStepsComplete(t *testing.T) {
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("all-immediate", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(2)).
		AddNotify(strategy.Immediately(), "done").
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
	if res.StepsCompleted != res.TotalSteps || res.TotalSteps != 3 {
		t.Fatalf("completed=%d/%d want=3/3", res.StepsCompleted, res.TotalSteps)
	}
	if !res.TotalSpent.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("spent=%s want=3", res.TotalSpent)
	}
	if plan.Status != models.StrategyCompleted {
		t.Fatalf("strategy status=%s want=completed", plan.Status)
	}
}

func TestExecute_EmptyStrategyRejected(t *testing.T) {
	exec := newTestExecutor(&stubAdapter{}, &stubPrices{})
	if _, err := exec.Execute(context.Background(), &models.Strategy{ID: "x"}, ""); err == nil {
		t.Fatal("want error for empty strategy")
	}
}

func TestExecute_UnmetDependencySkipsStep(t *testing.T) {
	// First buy fails at the venue, so the dependent sell must be skipped,
	// recorded, and never reach the adapter.
	adapter := &stubAdapter{failFirst: 1}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("deps", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		AddSellPercent(strategy.Immediately(), decimal.NewFromInt(100)).
		DependsOn("step_1").
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyFailed {
		t.Fatalf("status=%s want=failed", res.Status)
	}
	if adapter.callCount() != 1 {
		t.Fatalf("adapter calls=%d want=1 (dependent step must not execute)", adapter.callCount())
	}
	if plan.Steps[1].Completed {
		t.Fatal("skipped step must not be marked completed")
	}
	foundDep := false
	for _, e := range res.Errors {
		if strings.HasPrefix(e, "dependency:") {
			foundDep = true
		}
	}
	if !foundDep {
		t.Fatalf("errors=%v want a dependency entry", res.Errors)
	}
}

func TestExecute_PriceBelowFiresAtEqualPrice(t *testing.T) {
	prices := &stubPrices{}
	prices.set(decimal.NewFromInt(100))
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, prices)

	plan := strategy.NewBuilder("equal-price", "BONK").
		AddBuy(strategy.PriceBelow(decimal.NewFromInt(100)), decimal.NewFromInt(1)).
		WithTimeout(time.Second).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
}

func TestExecute_PriceWaitFallsBackToTargetAsset(t *testing.T) {
	// Hand-assembled strategies skip the builder's asset fill; the price
	// wait must still poll the strategy's target asset.
	prices := assetPrices{prices: map[string]decimal.Decimal{"BONK": decimal.NewFromInt(5)}}
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, prices)

	plan := &models.Strategy{
		ID:          "hand-built",
		TargetAsset: "BONK",
		Steps: []models.Step{{
			ID:           "step_1",
			Action:       models.ActionBuy,
			Trigger:      models.TriggerPriceBelow,
			TriggerPrice: decimal.NewFromInt(10),
			Timeout:      time.Second,
			Params:       models.StepParams{AmountSOL: decimal.NewFromInt(1)},
		}},
	}

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
}

func TestExecute_TriggerTimeoutSkipsStepRunContinues(t *testing.T) {
	prices := &stubPrices{}
	prices.set(decimal.NewFromInt(100))
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, prices)

	plan := strategy.NewBuilder("timeout", "BONK").
		AddBuy(strategy.PriceBelow(decimal.NewFromInt(1)), decimal.NewFromInt(1)).
		WithTimeout(50*time.Millisecond).
		AddNotify(strategy.Immediately(), "still here").
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyFailed {
		t.Fatalf("status=%s want=failed", res.Status)
	}
	if res.StepsCompleted != 1 {
		t.Fatalf("completed=%d want=1 (notify ran after the skip)", res.StepsCompleted)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "timeout:") {
		t.Fatalf("errors=%v want one timeout entry", res.Errors)
	}
}

func TestExecute_StopLossHaltsBeforeNextStep(t *testing.T) {
	adapter := &stubAdapter{
		spendPerBuy:    decimal.NewFromInt(100),
		receivePerSell: decimal.NewFromInt(88), // cumulative PnL -12%
	}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("stoploss", "BONK").
		WithStopLoss(decimal.NewFromInt(10)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(100)).
		AddSellPercent(strategy.Immediately(), decimal.NewFromInt(100)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(100)).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if adapter.callCount() != 2 {
		t.Fatalf("adapter calls=%d want=2 (step 3 must not run)", adapter.callCount())
	}
	if res.Status == models.StrategyCompleted {
		t.Fatalf("status=%s must not be completed", res.Status)
	}
	if res.StopReason != models.StopLoss {
		t.Fatalf("stop reason=%s want=stop_loss", res.StopReason)
	}
	if plan.Steps[2].Completed {
		t.Fatal("pre-empted step must stay un-executed")
	}
}

func TestExecute_TakeProfitStopsCleanlyAfterFinalStep(t *testing.T) {
	adapter := &stubAdapter{
		spendPerBuy:    decimal.NewFromInt(100),
		receivePerSell: decimal.NewFromInt(150),
	}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("takeprofit", "BONK").
		WithTakeProfit(decimal.NewFromInt(20)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(100)).
		AddSellPercent(strategy.Immediately(), decimal.NewFromInt(100)).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// Every step ran and succeeded; the breach after the last step is a
	// clean stop, not a failure.
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed", res.Status)
	}
	if res.StopReason != models.StopTakeProfit {
		t.Fatalf("stop reason=%s want=take_profit", res.StopReason)
	}
}

func TestExecute_NotifyStepPublishesStepNotice(t *testing.T) {
	bus := events.NewBus()
	notices := bus.Subscribe(events.StepNotice, 4)
	exec := New(&stubAdapter{}, NewPriceCache(&stubPrices{}, time.Millisecond), nil, bus, nil, testConfig())

	plan := strategy.NewBuilder("notice", "BONK").
		AddNotify(strategy.Immediately(), "entry armed").
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed", res.Status)
	}
	select {
	case ev := <-notices:
		if ev.StepID != "step_1" || ev.Detail != "entry armed" {
			t.Fatalf("notice=%+v want step_1 with message", ev)
		}
	default:
		t.Fatal("notify step must publish a step notice")
	}
}

func TestExecute_PermissionDenialRecordedLikeAdapterFailure(t *testing.T) {
	st := store.NewMemoryStore()
	enforcer := permission.NewEnforcer(st, nil, config.PermissionsConfig{})
	perm, err := enforcer.Create(context.Background(), "u1", "a1", "w1", nil, models.PermissionLimits{
		MaxTransactionSOL: decimal.NewFromInt(1),
		DailyLimitSOL:     decimal.NewFromInt(100),
		WeeklyLimitSOL:    decimal.NewFromInt(100),
	}, 0)
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}

	adapter := &stubAdapter{}
	exec := New(adapter, NewPriceCache(&stubPrices{}, time.Millisecond), enforcer, nil, nil, testConfig())

	plan := strategy.NewBuilder("denied", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(5)).
		AddNotify(strategy.Immediately(), "after").
		Build()

	res, err := exec.Execute(context.Background(), plan, perm.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if adapter.callCount() != 0 {
		t.Fatalf("adapter calls=%d want=0 for a denied trade", adapter.callCount())
	}
	if res.Status != models.StrategyFailed {
		t.Fatalf("status=%s want=failed", res.Status)
	}
	if res.StepsCompleted != 1 {
		t.Fatalf("completed=%d want=1 (run continued past the denial)", res.StepsCompleted)
	}
	if len(res.Errors) == 0 || !strings.HasPrefix(res.Errors[0], "permission:") {
		t.Fatalf("errors=%v want a permission entry", res.Errors)
	}
}

func TestExecute_RecordsUsageAfterSuccessfulBuy(t *testing.T) {
	st := store.NewMemoryStore()
	enforcer := permission.NewEnforcer(st, nil, config.PermissionsConfig{})
	perm, err := enforcer.Create(context.Background(), "u1", "a1", "w1", nil, models.PermissionLimits{
		MaxTransactionSOL: decimal.NewFromInt(10),
		DailyLimitSOL:     decimal.NewFromInt(100),
		WeeklyLimitSOL:    decimal.NewFromInt(100),
	}, 0)
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}

	exec := New(&stubAdapter{}, NewPriceCache(&stubPrices{}, time.Millisecond), enforcer, nil, nil, testConfig())

	plan := strategy.NewBuilder("usage", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(4)).
		Build()

	if _, err := exec.Execute(context.Background(), plan, perm.ID); err != nil {
		t.Fatalf("execute: %v", err)
	}
	check := enforcer.Check(context.Background(), &models.TradeIntent{
		Action:    models.ActionBuy,
		AmountSOL: decimal.NewFromInt(1),
	}, perm)
	if !check.Permitted {
		t.Fatalf("small follow-up should pass: %s", check.Reason)
	}
	if check.RemainingDaily == nil || !check.RemainingDaily.Equal(decimal.NewFromInt(96)) {
		t.Fatalf("remaining daily=%v want=96", check.RemainingDaily)
	}
}

func TestExecute_LedgerWriteFailureLoggedNotFatal(t *testing.T) {
	st := flakyLedgerStore{Store: store.NewMemoryStore()}
	enforcer := permission.NewEnforcer(st, nil, config.PermissionsConfig{})
	perm, err := enforcer.Create(context.Background(), "u1", "a1", "w1", nil, models.PermissionLimits{
		MaxTransactionSOL: decimal.NewFromInt(10),
		DailyLimitSOL:     decimal.NewFromInt(100),
		WeeklyLimitSOL:    decimal.NewFromInt(100),
	}, 0)
	if err != nil {
		t.Fatalf("create permission: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	exec := New(&stubAdapter{}, NewPriceCache(&stubPrices{}, time.Millisecond), enforcer, nil, zap.New(core), testConfig())

	plan := strategy.NewBuilder("ledger", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(4)).
		Build()

	res, err := exec.Execute(context.Background(), plan, perm.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	// The trade stands; the drift is advisory.
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
	step := res.StepResults[0]
	if !step.Success || !strings.HasPrefix(step.Error, "permission: record usage") {
		t.Fatalf("step result=%+v want success with a recorded ledger error", step)
	}
	if logs.FilterMessage("usage ledger write failed").Len() != 1 {
		t.Fatal("ledger failure must be logged")
	}
}

func TestExecute_BoundedRetriesThenSuccess(t *testing.T) {
	adapter := &stubAdapter{failFirst: 2}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("retries", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		WithRetries(2).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed after retries (errors=%v)", res.Status, res.Errors)
	}
	if adapter.callCount() != 3 {
		t.Fatalf("adapter calls=%d want=3", adapter.callCount())
	}
}

func TestExecute_RetryBudgetExhausted(t *testing.T) {
	adapter := &stubAdapter{failFirst: 10}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("exhausted", "BONK").
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		WithRetries(1).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if adapter.callCount() != 2 {
		t.Fatalf("adapter calls=%d want=2 (1 try + 1 retry)", adapter.callCount())
	}
	if res.Status != models.StrategyFailed {
		t.Fatalf("status=%s want=failed", res.Status)
	}
}

func TestExecute_ManualTriggerFiresStep(t *testing.T) {
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("manual", "BONK").
		AddBuy(strategy.Manually(), decimal.NewFromInt(1)).
		WithTimeout(2 * time.Second).
		Build()

	var (
		wg  sync.WaitGroup
		res *models.StrategyResult
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = exec.Execute(context.Background(), plan, "")
	}()

	// Wait for the run to register, then fire the gate.
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := exec.Status(plan.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if err := exec.Trigger(plan.ID, "step_1"); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	wg.Wait()

	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
}

func TestTrigger_ConcurrentCallsFireOnce(t *testing.T) {
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("concurrent-trigger", "BONK").
		AddBuy(strategy.Manually(), decimal.NewFromInt(1)).
		WithTimeout(2 * time.Second).
		Build()

	var (
		wg  sync.WaitGroup
		res *models.StrategyResult
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = exec.Execute(context.Background(), plan, "")
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := exec.Status(plan.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var firers sync.WaitGroup
	for i := 0; i < 16; i++ {
		firers.Add(1)
		go func() {
			defer firers.Done()
			_ = exec.Trigger(plan.ID, "step_1")
		}()
	}
	firers.Wait()
	wg.Wait()

	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
	if adapter.callCount() != 1 {
		t.Fatalf("adapter calls=%d want=1", adapter.callCount())
	}
}

func TestExecute_CancelDuringTriggerWait(t *testing.T) {
	prices := &stubPrices{}
	prices.set(decimal.NewFromInt(100))
	exec := newTestExecutor(&stubAdapter{}, prices)

	plan := strategy.NewBuilder("cancel", "BONK").
		AddBuy(strategy.PriceBelow(decimal.NewFromInt(1)), decimal.NewFromInt(1)).
		WithTimeout(5 * time.Second).
		Build()

	var (
		wg  sync.WaitGroup
		res *models.StrategyResult
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = exec.Execute(context.Background(), plan, "")
	}()

	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := exec.Status(plan.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)
	if err := exec.Cancel(plan.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	wg.Wait()

	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCancelled {
		t.Fatalf("status=%s want=cancelled", res.Status)
	}
}

func TestExecute_PauseResumePreservesOrderWithoutReexecution(t *testing.T) {
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("pause", "BONK").
		WithStepDelay(300*time.Millisecond).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(2)).
		Build()

	var (
		wg  sync.WaitGroup
		res *models.StrategyResult
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, err = exec.Execute(context.Background(), plan, "")
	}()

	// Pause while the run sits in the inter-step delay.
	time.Sleep(100 * time.Millisecond)
	if err := exec.Pause(plan.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	time.Sleep(500 * time.Millisecond)
	if n := adapter.callCount(); n != 1 {
		t.Fatalf("adapter calls while paused=%d want=1", n)
	}
	if err := exec.Resume(plan.ID); err != nil {
		t.Fatalf("resume: %v", err)
	}
	wg.Wait()

	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Status != models.StrategyCompleted {
		t.Fatalf("status=%s want=completed (errors=%v)", res.Status, res.Errors)
	}
	if adapter.callCount() != 2 {
		t.Fatalf("adapter calls=%d want=2 (no re-execution)", adapter.callCount())
	}
	if !adapter.calls[0].AmountSOL.Equal(decimal.NewFromInt(1)) ||
		!adapter.calls[1].AmountSOL.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("steps ran out of order: %v", adapter.calls)
	}
}

func TestControl_InvalidTransitionsRejected(t *testing.T) {
	exec := newTestExecutor(&stubAdapter{}, &stubPrices{})
	if err := exec.Pause("nope"); err == nil {
		t.Fatal("pause of unknown run must fail")
	}

	prices := &stubPrices{}
	prices.set(decimal.NewFromInt(100))
	exec = newTestExecutor(&stubAdapter{}, prices)
	plan := strategy.NewBuilder("transitions", "BONK").
		AddBuy(strategy.PriceBelow(decimal.NewFromInt(1)), decimal.NewFromInt(1)).
		WithTimeout(5 * time.Second).
		Build()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = exec.Execute(context.Background(), plan, "")
	}()
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := exec.Status(plan.ID); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("run never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := exec.Resume(plan.ID); err == nil {
		t.Fatal("resume of a running strategy must fail")
	}
	if err := exec.Pause(plan.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := exec.Pause(plan.ID); err == nil {
		t.Fatal("double pause must fail")
	}
	// A paused run can be cancelled directly.
	if err := exec.Cancel(plan.ID); err != nil {
		t.Fatalf("cancel from paused: %v", err)
	}
	wg.Wait()
	if err := exec.Cancel(plan.ID); err == nil {
		t.Fatal("cancel after the run ended must fail")
	}
}

func TestExecute_MaxDurationStopsRun(t *testing.T) {
	adapter := &stubAdapter{}
	exec := newTestExecutor(adapter, &stubPrices{})

	plan := strategy.NewBuilder("duration", "BONK").
		WithMaxDuration(50*time.Millisecond).
		WithStepDelay(60*time.Millisecond).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		AddBuy(strategy.Immediately(), decimal.NewFromInt(1)).
		Build()

	res, err := exec.Execute(context.Background(), plan, "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.StopReason != models.StopMaxDuration {
		t.Fatalf("stop reason=%s want=max_duration", res.StopReason)
	}
	if res.StepsCompleted >= res.TotalSteps {
		t.Fatalf("run must stop early, completed=%d/%d", res.StepsCompleted, res.TotalSteps)
	}
}
