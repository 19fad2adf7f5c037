// Package events is the control plane's notification surface. Event types are
// a closed set so subscribers can match exhaustively; external notifiers and
// telemetry attach here rather than inside the state machines.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

type Type string

const (
	SignalReceived     Type = "signal_received"
	IntentGenerated    Type = "intent_generated"
	ExecutionStarted   Type = "execution_started"
	ExecutionCompleted Type = "execution_completed"
	ExecutionFailed    Type = "execution_failed"
	PositionOpened     Type = "position_opened"
	PositionClosed     Type = "position_closed"
	RiskLimitTriggered Type = "risk_limit_triggered"
	AgentPaused        Type = "agent_paused"
	AgentResumed       Type = "agent_resumed"
	StrategyStarted    Type = "strategy_started"
	StrategyCompleted  Type = "strategy_completed"
	StepNotice         Type = "step_notice"
	ManualTrigger      Type = "manual_trigger"
)

type Event struct {
	Type       Type      `json:"type"`
	AgentID    string    `json:"agent_id,omitempty"`
	StrategyID string    `json:"strategy_id,omitempty"`
	StepID     string    `json:"step_id,omitempty"`
	Detail     any       `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// Bus fans events out to typed subscribers. Publish never blocks a state
// machine: a subscriber that falls behind drops events, counted in Dropped.
type Bus struct {
	mu      sync.RWMutex
	subs    map[Type][]chan Event
	allSubs []chan Event
	dropped uint64
}

func NewBus() *Bus {
	return &Bus{subs: map[Type][]chan Event{}}
}

// Subscribe returns a channel receiving events of one type.
func (b *Bus) Subscribe(t Type, buf int) <-chan Event {
	if buf <= 0 {
		buf = 16
	}
	ch := make(chan Event, buf)
	b.mu.Lock()
	b.subs[t] = append(b.subs[t], ch)
	b.mu.Unlock()
	return ch
}

// SubscribeAll returns a channel receiving every published event.
func (b *Bus) SubscribeAll(buf int) <-chan Event {
	if buf <= 0 {
		buf = 64
	}
	ch := make(chan Event, buf)
	b.mu.Lock()
	b.allSubs = append(b.allSubs, ch)
	b.mu.Unlock()
	return ch
}

func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.RLock()
	typed := b.subs[ev.Type]
	all := b.allSubs
	b.mu.RUnlock()
	for _, ch := range typed {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&b.dropped, 1)
		}
	}
	for _, ch := range all {
		select {
		case ch <- ev:
		default:
			atomic.AddUint64(&b.dropped, 1)
		}
	}
}

// Dropped reports how many events were discarded on full subscriber buffers.
func (b *Bus) Dropped() uint64 {
	return atomic.LoadUint64(&b.dropped)
}
