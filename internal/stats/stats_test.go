package stats

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/round"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/rules/builtin"
)

func skewedVariation() *rules.Variation {
	return &rules.Variation{
		Name:    "Skewed",
		Symbols: []string{"A", "B"},
		Weights: [rules.Reels][]int{{0, 0, 1}, {0, 1}, {0}},
		PayTable: []rules.Rule{
			{Slots: [rules.Reels]int{0, 0, 0}, PayoutPerCoin: 6},
			{Slots: [rules.Reels]int{1, rules.Wildcard, rules.Wildcard}, PayoutPerCoin: 2},
		},
		SeedCapital: 10,
	}
}

func TestExactRTP(t *testing.T) {
	rep := ExactRTP(skewedVariation())

	if want := decimal.RequireFromString("2.666667"); !rep.RTP.Equal(want) {
		t.Errorf("Expected RTP %s, got %s", want, rep.RTP)
	}
	if want := decimal.RequireFromString("0.666667"); !rep.HitRate.Equal(want) {
		t.Errorf("Expected hit rate %s, got %s", want, rep.HitRate)
	}
	if len(rep.Rules) != 2 {
		t.Fatalf("Expected 2 rule shares, got %d", len(rep.Rules))
	}
	if want := decimal.RequireFromString("0.333333"); !rep.Rules[0].Probability.Equal(want) {
		t.Errorf("Expected rule 0 probability %s, got %s", want, rep.Rules[0].Probability)
	}
	if want := decimal.RequireFromString("2"); !rep.Rules[0].Return.Equal(want) {
		t.Errorf("Expected rule 0 return %s, got %s", want, rep.Rules[0].Return)
	}
}

func TestSimulateConvergesToExact(t *testing.T) {
	v := skewedVariation()
	v.Sequence = []int{1, 1, 1}

	sim := Simulate(v, engine.NewMathSource(7), 20000)
	exact := ExactRTP(v)

	diff := sim.RTP.Sub(exact.RTP).Abs()
	if diff.GreaterThan(decimal.RequireFromString("0.1")) {
		t.Errorf("Simulated RTP %s too far from exact %s", sim.RTP, exact.RTP)
	}
	if sim.Spins != 20000 || sim.Hits == 0 {
		t.Errorf("Unexpected simulation: %+v", sim)
	}
}

func TestBuiltinVariationsHaveFiniteRTP(t *testing.T) {
	names, err := rules.List(builtin.FS)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, name := range names {
		v, err := rules.Load(builtin.FS, name)
		if err != nil {
			t.Fatalf("Load %s failed: %v", name, err)
		}
		rep := ExactRTP(v)
		if !rep.RTP.IsPositive() {
			t.Errorf("%s: expected a positive RTP, got %s", name, rep.RTP)
		}
		if rep.HitRate.GreaterThan(decimal.NewFromInt(1)) {
			t.Errorf("%s: hit rate above one: %s", name, rep.HitRate)
		}
	}
}

func TestTrackerStreaksAndRTP(t *testing.T) {
	tr := NewTracker(10)
	outcomes := []round.Outcome{
		{Round: 1, Bet: 2, Win: false, Credit: 8},
		{Round: 2, Bet: 2, Win: false, Credit: 6},
		{Round: 3, Bet: 3, Win: true, Payout: 9, LuckyBonus: 3, Credit: 12},
		{Round: 4, Bet: 0, Win: true, Payout: 0, Credit: 12},
	}
	for _, o := range outcomes {
		tr.RoundSettled(o)
	}

	s := tr.Snapshot()
	if s.Rounds != 4 || s.Wins != 2 || s.Losses != 2 || s.Freeloaders != 1 {
		t.Errorf("Unexpected counts: %+v", s)
	}
	if s.Wagered != 7 || s.Returned != 9 || s.Profit != 2 || s.LuckyBonus != 3 {
		t.Errorf("Unexpected money: %+v", s)
	}
	if s.CurrentStreak != 2 || s.HighestStreak != 2 || s.LowestStreak != -2 {
		t.Errorf("Unexpected streaks: current=%d high=%d low=%d", s.CurrentStreak, s.HighestStreak, s.LowestStreak)
	}
	if s.BiggestWin != 9 {
		t.Errorf("Expected biggest win 9, got %d", s.BiggestWin)
	}
	if want := decimal.RequireFromString("1.285714"); !s.RTP.Equal(want) {
		t.Errorf("Expected RTP %s, got %s", want, s.RTP)
	}
	if len(tr.Chart()) != 4 {
		t.Errorf("Expected 4 chart points, got %d", len(tr.Chart()))
	}
}

func TestChartBufferDecimates(t *testing.T) {
	cb := NewChartBuffer(4)
	for i := 1; i <= 8; i++ {
		cb.Push(ChartPoint{Round: i})
	}
	if len(cb.Points) > 8 {
		t.Fatalf("Expected decimation, got %d points", len(cb.Points))
	}
	if cb.Points[0].Round != 1 || cb.Points[len(cb.Points)-1].Round != 8 {
		t.Errorf("Expected first and last kept, got %+v", cb.Points)
	}
}

func TestRatioZeroDenominator(t *testing.T) {
	if !Ratio(5, 0).IsZero() {
		t.Errorf("Expected zero ratio")
	}
}
