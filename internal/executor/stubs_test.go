package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"tradeplan/internal/store"
)

// flakyLedgerStore fails every usage increment while the rest of the store
// keeps working.
type flakyLedgerStore struct {
	store.Store
}

func (flakyLedgerStore) IncrUsage(context.Context, string, decimal.Decimal) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("ledger down")
}

// stubAdapter scripts per-call trade outcomes and records every call.
type stubAdapter struct {
	mu    sync.Mutex
	calls []TradeParams

	// failFirst fails this many calls before succeeding.
	failFirst int
	// err, when set, is returned instead of a result.
	err error
	// spendPerBuy / receivePerSell shape successful results.
	spendPerBuy    decimal.Decimal
	receivePerSell decimal.Decimal
}

func (a *stubAdapter) record(p TradeParams) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, p)
	return len(a.calls)
}

func (a *stubAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *stubAdapter) CoordinatedBuy(_ context.Context, p TradeParams) (*TradeResult, error) {
	n := a.record(p)
	if a.err != nil {
		return nil, a.err
	}
	if n <= a.failFirst {
		return &TradeResult{Success: false, Errors: []string{"venue rejected"}}, nil
	}
	spent := a.spendPerBuy
	if spent.IsZero() {
		spent = p.AmountSOL
	}
	return &TradeResult{Success: true, TotalSolSpent: spent, TotalTokens: decimal.NewFromInt(1000)}, nil
}

func (a *stubAdapter) CoordinatedSell(_ context.Context, p TradeParams) (*TradeResult, error) {
	n := a.record(p)
	if a.err != nil {
		return nil, a.err
	}
	if n <= a.failFirst {
		return &TradeResult{Success: false, Errors: []string{"venue rejected"}}, nil
	}
	recv := a.receivePerSell
	if recv.IsZero() {
		recv = p.AmountSOL
	}
	return &TradeResult{Success: true, TotalSolReceived: recv}, nil
}

// assetPrices serves prices only for known assets.
type assetPrices struct {
	prices map[string]decimal.Decimal
}

func (a assetPrices) GetPrice(_ context.Context, asset string) (decimal.Decimal, error) {
	p, ok := a.prices[asset]
	if !ok {
		return decimal.Zero, errors.New("unknown asset " + asset)
	}
	return p, nil
}

// stubPrices serves a settable price and counts upstream fetches.
type stubPrices struct {
	mu      sync.Mutex
	price   decimal.Decimal
	err     error
	fetches int
}

func (s *stubPrices) set(p decimal.Decimal) {
	s.mu.Lock()
	s.price = p
	s.err = nil
	s.mu.Unlock()
}

func (s *stubPrices) fail() {
	s.mu.Lock()
	s.err = errors.New("feed down")
	s.mu.Unlock()
}

func (s *stubPrices) GetPrice(context.Context, string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.price, nil
}

func (s *stubPrices) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}
