package strategy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tradeplan/internal/models"
)

func TestBuild_DefaultsToCustomType(t *testing.T) {
	s := NewBuilder("plain", "BONK").
		AddBuy(Immediately(), decimal.NewFromInt(1)).
		Build()
	if s.Type != models.StrategyTypeCustom {
		t.Fatalf("type=%s want=%s", s.Type, models.StrategyTypeCustom)
	}
	if s.Status != models.StrategyPending {
		t.Fatalf("status=%s want=pending", s.Status)
	}
}

func TestBuild_StepsInheritTargetAsset(t *testing.T) {
	s := NewBuilder("inherit", "BONK").
		AddBuy(Immediately(), decimal.NewFromInt(1)).
		AddSellPercent(PriceAbove(decimal.NewFromInt(2)), decimal.NewFromInt(50)).
		ForAsset("WIF").
		Build()
	if got := s.Steps[0].Params.Asset; got != "BONK" {
		t.Fatalf("step 1 asset=%s want=BONK", got)
	}
	if got := s.Steps[1].Params.Asset; got != "WIF" {
		t.Fatalf("step 2 asset=%s want=WIF (explicit override)", got)
	}
}

func TestBuilder_StepModifiersApplyToLastStep(t *testing.T) {
	s := NewBuilder("mods", "BONK").
		AddBuy(Immediately(), decimal.NewFromInt(1)).
		AddBuy(Manually(), decimal.NewFromInt(2)).
		WithTimeout(time.Minute).
		WithRetries(3).
		DependsOn("step_1").
		Build()

	first := s.Steps[0]
	if first.Timeout != 0 || first.MaxRetries != 0 || len(first.DependsOn) != 0 {
		t.Fatalf("modifiers leaked onto first step: %+v", first)
	}
	second := s.Steps[1]
	if second.Timeout != time.Minute {
		t.Fatalf("timeout=%v want=1m", second.Timeout)
	}
	if second.MaxRetries != 3 {
		t.Fatalf("retries=%d want=3", second.MaxRetries)
	}
	if len(second.DependsOn) != 1 || second.DependsOn[0] != "step_1" {
		t.Fatalf("dependsOn=%v want=[step_1]", second.DependsOn)
	}
}

func TestBuilder_StepIDsAreSequential(t *testing.T) {
	s := NewBuilder("ids", "BONK").
		AddBuy(Immediately(), decimal.NewFromInt(1)).
		AddWait(At(time.Now().Add(time.Hour))).
		AddNotify(Immediately(), "done").
		Build()
	want := []string{"step_1", "step_2", "step_3"}
	for i, id := range want {
		if s.Steps[i].ID != id {
			t.Fatalf("step %d id=%s want=%s", i, s.Steps[i].ID, id)
		}
	}
}

func TestBuild_ReturnsIndependentCopy(t *testing.T) {
	b := NewBuilder("copy", "BONK").
		AddBuy(Immediately(), decimal.NewFromInt(1))
	first := b.Build()
	b.AddSellPercent(Immediately(), decimal.NewFromInt(100))
	if len(first.Steps) != 1 {
		t.Fatalf("earlier build mutated: %d steps", len(first.Steps))
	}
}
