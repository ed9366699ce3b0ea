package player

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/rules"
)

// fixedSource returns the same values forever.
type fixedSource struct {
	intn  int
	float float64
}

func (s fixedSource) Intn(n int) int    { return s.intn % n }
func (s fixedSource) Float64() float64 { return s.float }

func testVariation() *rules.Variation {
	return &rules.Variation{
		Name:                    "Test Machine",
		Symbols:                 []string{"A", "B"},
		Weights:                 [rules.Reels][]int{{0, 1}, {0, 1}, {0, 1}},
		PayTable:                []rules.Rule{{Slots: [rules.Reels]int{0, 0, 0}, PayoutPerCoin: 10}},
		SeedCapital:             10,
		LuckyCoinBonus:          5,
		LuckyCoinReRollInterval: 3,
		LuckyCoinChance:         0.5,
	}
}

func TestGambleThenLoose(t *testing.T) {
	p := New(testVariation(), prefs.NewMemory(), fixedSource{}, nil)

	if err := p.Gamble(2); err != nil {
		t.Fatalf("Gamble failed: %v", err)
	}
	p.Loose()

	if p.Credit != 8 {
		t.Errorf("Expected credit 8, got %d", p.Credit)
	}
	if p.Bet != 0 {
		t.Errorf("Expected bet 0, got %d", p.Bet)
	}
	if p.StreakOfBadLuck != 1 || p.StreakOfLuck != 0 {
		t.Errorf("Unexpected streaks: luck=%d bad=%d", p.StreakOfLuck, p.StreakOfBadLuck)
	}
	if p.Round != 1 {
		t.Errorf("Expected round 1, got %d", p.Round)
	}
}

func TestGambleThenWin(t *testing.T) {
	// Float64 above the chance keeps the lucky coin out of the way.
	p := New(testVariation(), prefs.NewMemory(), fixedSource{float: 0.9}, nil)

	if err := p.Gamble(2); err != nil {
		t.Fatalf("Gamble failed: %v", err)
	}
	got := p.Win(20)

	if got != 20 {
		t.Errorf("Expected 20 credited, got %d", got)
	}
	if p.Credit != 28 {
		t.Errorf("Expected credit 28 (net +18), got %d", p.Credit)
	}
	if p.Bet != 0 {
		t.Errorf("Expected bet reset, got %d", p.Bet)
	}
	if p.StreakOfLuck != 1 || p.StreakOfBadLuck != 0 {
		t.Errorf("Unexpected streaks: luck=%d bad=%d", p.StreakOfLuck, p.StreakOfBadLuck)
	}
	if p.Highscore != 28 {
		t.Errorf("Expected highscore 28, got %d", p.Highscore)
	}
}

func TestGambleRejectsUnaffordableBets(t *testing.T) {
	p := New(testVariation(), prefs.NewMemory(), fixedSource{}, nil)
	for _, amount := range []int{-1, BetSlots + 1, 7, 11} {
		err := p.Gamble(amount)
		if !errors.Is(err, engine.ErrInvalidOperation) {
			t.Errorf("Gamble(%d): expected ErrInvalidOperation, got %v", amount, err)
		}
	}
	if p.Credit != 10 || p.Bet != 0 {
		t.Errorf("Rejected gamble changed state: credit=%d bet=%d", p.Credit, p.Bet)
	}
}

func TestFreeloaderCount(t *testing.T) {
	p := New(testVariation(), prefs.NewMemory(), fixedSource{}, nil)
	for i := 0; i < 3; i++ {
		if err := p.Gamble(0); err != nil {
			t.Fatalf("Gamble failed: %v", err)
		}
		p.Loose()
	}
	if p.FreeloaderCount != 3 {
		t.Errorf("Expected freeloader count 3, got %d", p.FreeloaderCount)
	}
	if err := p.Gamble(1); err != nil {
		t.Fatalf("Gamble failed: %v", err)
	}
	if p.FreeloaderCount != 0 {
		t.Errorf("Expected freeloader count reset, got %d", p.FreeloaderCount)
	}
}

func TestLuckyCoinBonus(t *testing.T) {
	tests := []struct {
		name      string
		bet       int
		luckySlot int
		float     float64
		prize     int
		wantBonus int
	}{
		{"slot played and chance hit", 2, 1, 0.1, 10, 5},
		{"slot not played", 1, 1, 0.1, 10, 0},
		{"chance missed", 3, 0, 0.6, 10, 0},
		{"no prize", 3, 0, 0.1, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(testVariation(), prefs.NewMemory(), fixedSource{intn: tt.luckySlot, float: tt.float}, nil)
			if p.LuckyCoinIndex != tt.luckySlot {
				t.Fatalf("Expected lucky slot %d, got %d", tt.luckySlot, p.LuckyCoinIndex)
			}
			if err := p.Gamble(tt.bet); err != nil {
				t.Fatalf("Gamble failed: %v", err)
			}
			got := p.Win(tt.prize)
			if got != tt.prize+tt.wantBonus {
				t.Errorf("Expected %d credited, got %d", tt.prize+tt.wantBonus, got)
			}
			if p.LastLuckyBonus != tt.wantBonus {
				t.Errorf("Expected bonus %d, got %d", tt.wantBonus, p.LastLuckyBonus)
			}
		})
	}
}

func TestLuckyCoinChangesOnlyOnInterval(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := testVariation()
		v.LuckyCoinReRollInterval = rapid.IntRange(1, 7).Draw(t, "interval")
		seed := rapid.Uint64().Draw(t, "seed")
		p := New(v, prefs.NewMemory(), engine.NewMathSource(seed), nil)
		p.Credit = 1000

		rounds := rapid.IntRange(1, 60).Draw(t, "rounds")
		for i := 0; i < rounds; i++ {
			before := p.LuckyCoinIndex
			bet := rapid.IntRange(0, BetSlots).Draw(t, "bet")
			if err := p.Gamble(bet); err != nil {
				t.Fatalf("Gamble failed: %v", err)
			}
			if rapid.Bool().Draw(t, "win") {
				p.Win(rapid.IntRange(0, 30).Draw(t, "prize"))
			} else {
				p.Loose()
			}
			if p.LuckyCoinIndex != before && p.Round%v.LuckyCoinReRollInterval != 0 {
				t.Fatalf("lucky coin changed in round %d with interval %d", p.Round, v.LuckyCoinReRollInterval)
			}
			if p.LuckyCoinIndex < 0 || p.LuckyCoinIndex >= BetSlots {
				t.Fatalf("lucky coin index out of range: %d", p.LuckyCoinIndex)
			}
		}
	})
}

func TestPersistence(t *testing.T) {
	store := prefs.NewMemory()
	v := testVariation()
	p := New(v, store, fixedSource{float: 0.9}, nil)

	if err := p.Gamble(1); err != nil {
		t.Fatalf("Gamble failed: %v", err)
	}
	p.Win(10)

	if got := store.Int("test_machine.credits", -1); got != 19 {
		t.Errorf("Expected stored credits 19, got %d", got)
	}
	if got := store.Int("test_machine.highscore", -1); got != 19 {
		t.Errorf("Expected stored highscore 19, got %d", got)
	}

	restored := New(v, store, fixedSource{}, nil)
	if restored.Credit != 19 || restored.Highscore != 19 {
		t.Errorf("Expected restored credit/highscore 19/19, got %d/%d", restored.Credit, restored.Highscore)
	}
}
