package scripting

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/player"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/round"
	"github.com/MJE43/pocketbandit/internal/rules"
)

func testPlayer(t *testing.T) *player.Player {
	t.Helper()
	v := &rules.Variation{
		Name:        "Test",
		Symbols:     []string{"A", "B"},
		Weights:     [rules.Reels][]int{{0, 1}, {0, 1}, {0, 1}},
		PayTable:    []rules.Rule{{Slots: [rules.Reels]int{0, 0, 0}, PayoutPerCoin: 4}},
		SeedCapital: 10,
	}
	return player.New(v, prefs.NewMemory(), engine.NewMathSource(1), nil)
}

func TestDefaultScriptMartingale(t *testing.T) {
	eng := NewEngine(nil)
	if err := eng.Start(DefaultScript, testPlayer(t)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if eng.State() != StateRunning {
		t.Fatalf("Expected running, got %s", eng.State())
	}

	eng.RoundSettled(round.Outcome{Round: 1, Bet: 1, Win: false, Credit: 9})
	d, ok, err := eng.Next()
	if err != nil || !ok {
		t.Fatalf("Next failed: ok=%v err=%v", ok, err)
	}
	if d.Bet != 2 {
		t.Errorf("Expected bet 2 after a loss, got %d", d.Bet)
	}
	if d.PullTime != 150*time.Millisecond {
		t.Errorf("Expected 150ms pull, got %v", d.PullTime)
	}

	eng.RoundSettled(round.Outcome{Round: 2, Bet: 2, Win: true, Payout: 8, Credit: 15})
	d, _, _ = eng.Next()
	if d.Bet != 1 {
		t.Errorf("Expected bet reset to 1 after a win, got %d", d.Bet)
	}

	eng.RoundSettled(round.Outcome{Round: 3, Bet: 3, Win: false, Credit: 1})
	d, _, _ = eng.Next()
	if d.Bet != 1 {
		t.Errorf("Expected bet capped at credit, got %d", d.Bet)
	}

	snap := eng.Snapshot()
	if snap.Vars.Bets != 3 || snap.Vars.Wins != 1 || snap.Vars.Losses != 2 {
		t.Errorf("Unexpected counters: %+v", snap.Vars)
	}
}

func TestStartRejectsWhileRunning(t *testing.T) {
	eng := NewEngine(nil)
	p := testPlayer(t)
	if err := eng.Start(DefaultScript, p); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := eng.Start(DefaultScript, p); !errors.Is(err, engine.ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}

	if err := eng.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := eng.Stop(); !errors.Is(err, engine.ErrInvalidOperation) {
		t.Errorf("Expected second stop rejected, got %v", err)
	}
	if _, ok, _ := eng.Next(); ok {
		t.Errorf("Expected no decision from a stopped engine")
	}

	if err := eng.Start(DefaultScript, p); err != nil {
		t.Errorf("Expected restart after stop, got %v", err)
	}
}

func TestScriptWithoutDobet(t *testing.T) {
	eng := NewEngine(nil)
	err := eng.Start(`nextbet = 1`, testPlayer(t))
	if err == nil {
		t.Fatal("Expected error for missing dobet")
	}
	if eng.State() != StateError || eng.Err() == nil {
		t.Errorf("Expected error state, got %s", eng.State())
	}
}

func TestSandboxBlocksGlobals(t *testing.T) {
	for _, src := range []string{
		`require("fs")`,
		`eval("1+1")`,
		`Function("return 1")()`,
		`fetch("http://example.com")`,
	} {
		eng := NewEngine(nil)
		if err := eng.Start(src+"\ndobet = function() {}", testPlayer(t)); err == nil {
			t.Errorf("Expected %q to fail", src)
		}
	}
}

func TestScriptStopAndClamp(t *testing.T) {
	eng := NewEngine(nil)
	script := `
		dobet = function() {
			log("round", round, "payline", payline[0], payline[1], payline[2])
			if (bets >= 2) {
				stop()
			}
			nextbet = 99
			pulltime = -5
			brake = true
		}
	`
	if err := eng.Start(script, testPlayer(t)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	d, ok, err := eng.Next()
	if err != nil || !ok {
		t.Fatalf("Next failed: ok=%v err=%v", ok, err)
	}
	if d.Bet != player.BetSlots || d.PullTime != 0 || !d.Brake {
		t.Errorf("Unexpected clamped decision: %+v", d)
	}

	eng.RoundSettled(round.Outcome{Round: 1, Payline: [3]int{1, 0, 1}})
	eng.RoundSettled(round.Outcome{Round: 2, Payline: [3]int{0, 1, 0}})
	if _, ok, err := eng.Next(); ok || err != nil {
		t.Errorf("Expected stop, got ok=%v err=%v", ok, err)
	}
	if eng.State() != StateStopped {
		t.Errorf("Expected stopped, got %s", eng.State())
	}

	logs := eng.Logs()
	if len(logs) != 2 || !strings.Contains(logs[1].Message, "payline 0 1 0") {
		t.Errorf("Unexpected logs: %+v", logs)
	}
}

func TestRunawayScriptTimesOut(t *testing.T) {
	eng := NewEngine(nil)
	if err := eng.Start(`dobet = function() { while (true) {} }`, testPlayer(t)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, ok, err := eng.Next(); ok || err == nil {
		t.Errorf("Expected timeout error, got ok=%v err=%v", ok, err)
	}
	if eng.State() != StateError {
		t.Errorf("Expected error state, got %s", eng.State())
	}
}
