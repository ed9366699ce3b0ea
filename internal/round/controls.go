package round

import "github.com/MJE43/pocketbandit/internal/player"

// BetOption is one coin slot of the bet controls.
type BetOption struct {
	Visible bool
	Checked bool
}

// Controls are the bet toggles next to the machine. They lock while the
// reels spin and hide every slot the player can no longer afford.
type Controls struct {
	options [player.BetSlots]BetOption
	locked  bool
}

// NewControls returns unlocked controls with the first slot checked.
func NewControls(credit int) *Controls {
	c := &Controls{}
	c.options[0].Checked = true
	c.refresh(credit)
	return c
}

func (c *Controls) refresh(credit int) {
	for i := range c.options {
		c.options[i].Visible = credit > i
	}
}

// Options returns a copy of the slot states.
func (c *Controls) Options() [player.BetSlots]BetOption { return c.options }

// Locked reports whether the controls are disabled.
func (c *Controls) Locked() bool { return c.locked }

// Lock disables the controls for the duration of a round.
func (c *Controls) Lock() { c.locked = true }

// Unlock re-enables the controls. Slot i stays visible only while
// credit > i.
func (c *Controls) Unlock(credit int) {
	c.locked = false
	c.refresh(credit)
}

// Toggle flips slot i. It fails while locked or when the slot is hidden.
func (c *Controls) Toggle(i int) bool {
	if c.locked || i < 0 || i >= len(c.options) || !c.options[i].Visible {
		return false
	}
	c.options[i].Checked = !c.options[i].Checked
	return true
}

// SetBet checks the first n visible slots and clears the rest. It returns
// the resulting bet.
func (c *Controls) SetBet(n int) int {
	if c.locked {
		return c.Bet()
	}
	for i := range c.options {
		c.options[i].Checked = i < n && c.options[i].Visible
	}
	return c.Bet()
}

// Bet counts the checked and visible slots.
func (c *Controls) Bet() int {
	n := 0
	for _, o := range c.options {
		if o.Checked && o.Visible {
			n++
		}
	}
	return n
}
