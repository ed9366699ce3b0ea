package stats

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/rules"
)

// RTPPlaces is the precision of every RTP figure.
const RTPPlaces = 6

// RuleShare is the probability and contribution of one paytable rule.
type RuleShare struct {
	Rule        int             `json:"rule"`
	Probability decimal.Decimal `json:"probability"`
	Return      decimal.Decimal `json:"return"`
}

// Report is the exact return of a variation for a one coin bet, ignoring
// the lucky coin.
type Report struct {
	Variation string          `json:"variation"`
	RTP       decimal.Decimal `json:"rtp"`
	HitRate   decimal.Decimal `json:"hitRate"`
	Rules     []RuleShare     `json:"rules"`
}

// ExactRTP enumerates every payline the reel weights can produce.
func ExactRTP(v *rules.Variation) Report {
	counts := make([][]int64, rules.Reels)
	var den int64 = 1
	for r := 0; r < rules.Reels; r++ {
		counts[r] = make([]int64, len(v.Symbols))
		for _, s := range v.Weights[r] {
			counts[r][s]++
		}
		den *= int64(len(v.Weights[r]))
	}

	ruleHits := make([]int64, len(v.PayTable))
	var paid, hits int64
	n := len(v.Symbols)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for c := 0; c < n; c++ {
				ways := counts[0][a] * counts[1][b] * counts[2][c]
				if ways == 0 {
					continue
				}
				i := v.Match([rules.Reels]int{a, b, c})
				if i == rules.NoMatch {
					continue
				}
				ruleHits[i] += ways
				if v.PayTable[i].PayoutPerCoin > 0 {
					hits += ways
				}
				paid += ways * int64(v.PayTable[i].PayoutPerCoin)
			}
		}
	}

	d := decimal.NewFromInt(den)
	rep := Report{
		Variation: v.Name,
		RTP:       decimal.NewFromInt(paid).DivRound(d, RTPPlaces),
		HitRate:   decimal.NewFromInt(hits).DivRound(d, RTPPlaces),
	}
	for i, w := range ruleHits {
		rep.Rules = append(rep.Rules, RuleShare{
			Rule:        i,
			Probability: decimal.NewFromInt(w).DivRound(d, RTPPlaces),
			Return:      decimal.NewFromInt(w * int64(v.PayTable[i].PayoutPerCoin)).DivRound(d, RTPPlaces),
		})
	}
	return rep
}

// Simulation is a Monte Carlo estimate of a variation's return.
type Simulation struct {
	Variation string          `json:"variation"`
	Spins     int             `json:"spins"`
	Hits      int             `json:"hits"`
	Paid      int             `json:"paid"`
	RTP       decimal.Decimal `json:"rtp"`
	HitRate   decimal.Decimal `json:"hitRate"`
}

// Simulate draws spins paylines from src and pays them for one coin. Debug
// sequences in the variation are ignored.
func Simulate(v *rules.Variation, src engine.Source, spins int) Simulation {
	picker := rules.NewPicker(v, src)
	picker.SetSequence(nil)

	sim := Simulation{Variation: v.Name, Spins: spins}
	for i := 0; i < spins; i++ {
		var line [rules.Reels]int
		for r := range line {
			line[r] = picker.Pick(r)
		}
		if p := v.Payout(1, line); p > 0 {
			sim.Hits++
			sim.Paid += p
		}
	}
	sim.RTP = Ratio(sim.Paid, spins)
	sim.HitRate = Ratio(sim.Hits, spins)
	return sim
}
