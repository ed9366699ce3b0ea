package rules

import (
	"fmt"
)

const (
	// Reels is the number of reels on every machine.
	Reels = 3
	// Wildcard in a rule slot matches any symbol.
	Wildcard = -1
	// NoMatch is returned by Match when no rule applies.
	NoMatch = -1
)

// Rule is one pay table row.
type Rule struct {
	Slots         [Reels]int
	PayoutPerCoin int
}

// HasWildcard reports whether any slot of the rule is a wildcard.
func (r Rule) HasWildcard() bool {
	for _, s := range r.Slots {
		if s == Wildcard {
			return true
		}
	}
	return false
}

// Variation is an immutable rule set. It is shared read-only by every round
// played against it.
type Variation struct {
	Name    string
	Machine string
	Symbols []string

	// Weights holds one draw list per reel. A symbol listed k times is drawn
	// with probability k/len.
	Weights [Reels][]int

	// PayTable is evaluated in order; the first matching rule wins.
	PayTable []Rule

	SeedCapital             int
	LuckyCoinBonus          int
	LuckyCoinReRollInterval int
	LuckyCoinChance         float64

	// Sequence is consumed by a Picker before it falls back to random draws.
	Sequence []int
}

// ConfigurationError is a malformed rule definition. It is fatal at load time.
type ConfigurationError struct {
	Resource string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.Resource == "" {
		return "rules: invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("rules: invalid configuration in %s: %s", e.Resource, e.Reason)
}

func (v *Variation) invalid(format string, args ...any) error {
	return &ConfigurationError{Resource: v.Name, Reason: fmt.Sprintf(format, args...)}
}

func (v *Variation) validSymbol(id int) bool {
	return id >= 0 && id < len(v.Symbols)
}

// Validate checks the variation and fills defaults. It returns a
// *ConfigurationError for anything that would leave the odds undefined.
func (v *Variation) Validate() error {
	if len(v.Symbols) == 0 {
		return v.invalid("no symbols defined")
	}
	for reel, list := range v.Weights {
		if len(list) == 0 {
			return v.invalid("weight table for reel %d is empty", reel)
		}
		for _, id := range list {
			if !v.validSymbol(id) {
				return v.invalid("weight table for reel %d references missing symbol %d", reel, id)
			}
		}
	}
	if len(v.PayTable) == 0 {
		return v.invalid("pay table is empty")
	}
	for i, rule := range v.PayTable {
		for _, s := range rule.Slots {
			if s != Wildcard && !v.validSymbol(s) {
				return v.invalid("rule %d references missing symbol %d", i, s)
			}
		}
		if rule.PayoutPerCoin < 0 {
			return v.invalid("rule %d has negative payout %d", i, rule.PayoutPerCoin)
		}
	}
	for i, id := range v.Sequence {
		if !v.validSymbol(id) {
			return v.invalid("sequence entry %d references missing symbol %d", i, id)
		}
	}
	if v.SeedCapital < 0 {
		return v.invalid("seed capital must not be negative")
	}
	if v.LuckyCoinBonus < 0 {
		return v.invalid("lucky coin bonus must not be negative")
	}
	if v.LuckyCoinChance < 0 || v.LuckyCoinChance > 1 {
		return v.invalid("lucky coin chance %v outside [0,1]", v.LuckyCoinChance)
	}
	if v.LuckyCoinReRollInterval < 0 {
		return v.invalid("lucky coin re-roll interval must not be negative")
	}
	if v.LuckyCoinReRollInterval == 0 {
		v.LuckyCoinReRollInterval = 1
	}
	return nil
}

// Match returns the index of the first rule matching payline, or NoMatch.
func (v *Variation) Match(payline [Reels]int) int {
	for i, rule := range v.PayTable {
		if slotMatches(rule.Slots[0], payline[0]) &&
			slotMatches(rule.Slots[1], payline[1]) &&
			slotMatches(rule.Slots[2], payline[2]) {
			return i
		}
	}
	return NoMatch
}

func slotMatches(slot, symbol int) bool {
	return slot == Wildcard || slot == symbol
}

// Payout returns the coins won for bet on payline.
func (v *Variation) Payout(bet int, payline [Reels]int) int {
	if bet == 0 {
		return 0
	}
	idx := v.Match(payline)
	if idx == NoMatch {
		return 0
	}
	return v.PayTable[idx].PayoutPerCoin * bet
}

// SymbolName returns the display name of id, or "?" when unknown.
func (v *Variation) SymbolName(id int) string {
	if !v.validSymbol(id) {
		return "?"
	}
	return v.Symbols[id]
}

// InitialFaces returns the resting 3x3 grid shown before the first spin.
// Cell i sits on reel i/3 and row i%3, row 1 being the payline. The payline
// shows the first wildcard-free rule, the rows below and above the second
// and third.
func (v *Variation) InitialFaces() [Reels * 3]int {
	var combos [][Reels]int
	for _, rule := range v.PayTable {
		if !rule.HasWildcard() {
			combos = append(combos, rule.Slots)
		}
		if len(combos) == 3 {
			break
		}
	}

	var faces [Reels * 3]int
	if len(combos) == 0 {
		for i := range faces {
			faces[i] = v.Weights[i/3][0]
		}
		return faces
	}

	// row -> rule: bottom row shows the second combo, payline the first,
	// top row the third.
	rowCombo := [3]int{1, 0, 2}
	for i := range faces {
		reel, row := i/3, i%3
		faces[i] = combos[rowCombo[row]%len(combos)][reel]
	}
	return faces
}
