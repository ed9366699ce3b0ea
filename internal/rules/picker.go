package rules

import (
	"github.com/MJE43/pocketbandit/internal/engine"
)

// Picker draws symbols for a variation. It is owned by the simulation thread.
type Picker struct {
	variation *Variation
	source    engine.Source
	sequence  []int
	pos       int
}

// NewPicker returns a picker drawing from src. A variation with a Sequence
// starts in override mode.
func NewPicker(v *Variation, src engine.Source) *Picker {
	p := &Picker{variation: v, source: src}
	p.SetSequence(v.Sequence)
	return p
}

// SetSequence replaces the override sequence. Its symbols are returned in
// order before random draws resume.
func (p *Picker) SetSequence(seq []int) {
	p.sequence = append([]int(nil), seq...)
	p.pos = 0
}

// Overriding reports whether the next Pick still comes from the sequence.
func (p *Picker) Overriding() bool {
	return p.pos < len(p.sequence)
}

// Pick returns the next symbol for reel.
func (p *Picker) Pick(reel int) int {
	if p.pos < len(p.sequence) {
		id := p.sequence[p.pos]
		p.pos++
		return id
	}
	list := p.variation.Weights[reel]
	return list[p.source.Intn(len(list))]
}
