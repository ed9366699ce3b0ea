package player

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/prefs"
	"github.com/MJE43/pocketbandit/internal/rules"
)

// BetSlots is the number of coins a player may put into one round.
const BetSlots = 3

// Player is the economy state of one player on one variation. It is owned by
// the simulation thread.
type Player struct {
	Round           int
	Credit          int
	Bet             int
	Highscore       int
	StreakOfLuck    int
	StreakOfBadLuck int
	FreeloaderCount int
	LuckyCoinIndex  int
	// LastLuckyBonus is the bonus paid by the most recent Win, if any.
	LastLuckyBonus int
	// Payline holds the resting symbols; valid only while no reel spins.
	Payline [rules.Reels]int

	variation *rules.Variation
	prefs     prefs.Preferences
	source    engine.Source
	logger    *zap.Logger
}

// New restores a player for v from p. A variation without stored credits
// starts at its seed capital.
func New(v *rules.Variation, p prefs.Preferences, src engine.Source, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	pl := &Player{
		variation: v,
		prefs:     p,
		source:    src,
		logger:    logger.Named("player").With(zap.String("variation", v.Name)),
	}
	pl.Credit = p.Int(prefs.CreditsKey(v.Name), v.SeedCapital)
	pl.Highscore = p.Int(prefs.HighscoreKey(v.Name), pl.Credit)
	pl.LuckyCoinIndex = src.Intn(BetSlots)
	return pl
}

// Variation returns the rule set the player plays against.
func (p *Player) Variation() *rules.Variation { return p.variation }

// Gamble moves amount from credit into the round's escrow. amount is at most
// BetSlots.
func (p *Player) Gamble(amount int) error {
	if amount > BetSlots {
		return fmt.Errorf("%w: bet %d exceeds %d slots", engine.ErrInvalidOperation, amount, BetSlots)
	}
	if amount < 0 || amount > p.Credit {
		return fmt.Errorf("%w: cannot bet %d with %d credits", engine.ErrInvalidOperation, amount, p.Credit)
	}
	if amount == 0 {
		p.FreeloaderCount++
	} else {
		p.FreeloaderCount = 0
	}
	p.Bet = amount
	p.Credit -= amount
	return nil
}

// Loose settles a lost round.
func (p *Player) Loose() {
	p.Bet = 0
	p.LastLuckyBonus = 0
	p.StreakOfBadLuck++
	p.StreakOfLuck = 0
	p.advance()
}

// Win settles a won round, credits prize plus any lucky coin bonus and
// returns the total credited.
func (p *Player) Win(prize int) int {
	bonus := 0
	if prize > 0 && p.Bet > p.LuckyCoinIndex && p.source.Float64() < p.variation.LuckyCoinChance {
		bonus = p.variation.LuckyCoinBonus
	}
	p.Credit += prize + bonus
	p.LastLuckyBonus = bonus
	p.StreakOfBadLuck = 0
	p.StreakOfLuck++
	p.Bet = 0
	p.advance()
	if bonus > 0 {
		p.logger.Debug("lucky coin paid", zap.Int("bonus", bonus), zap.Int("round", p.Round))
	}
	return prize + bonus
}

func (p *Player) advance() {
	p.Round++
	interval := p.variation.LuckyCoinReRollInterval
	if interval <= 0 {
		interval = 1
	}
	if p.Round%interval == 0 {
		p.LuckyCoinIndex = p.source.Intn(BetSlots)
	}
	if p.Credit > p.Highscore {
		p.Highscore = p.Credit
	}
	p.persist()
}

func (p *Player) persist() {
	p.prefs.SetInt(prefs.CreditsKey(p.variation.Name), p.Credit)
	p.prefs.SetInt(prefs.HighscoreKey(p.variation.Name), p.Highscore)
}
