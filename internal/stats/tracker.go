// Package stats keeps session statistics and computes return-to-player
// figures for a variation.
package stats

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/MJE43/pocketbandit/internal/round"
)

// Statistics is a snapshot of the session-level numbers.
type Statistics struct {
	Rounds      int `json:"rounds"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Freeloaders int `json:"freeloaders"`
	Wagered     int `json:"wagered"`
	Returned    int `json:"returned"`
	LuckyBonus  int `json:"luckyBonus"`
	Profit      int `json:"profit"`

	// Positive = win streak, negative = lose streak.
	CurrentStreak int `json:"currentStreak"`
	HighestStreak int `json:"highestStreak"`
	LowestStreak  int `json:"lowestStreak"`
	BiggestWin    int `json:"biggestWin"`

	RTP decimal.Decimal `json:"rtp"`
}

// ChartPoint is a single data point for the credit chart.
type ChartPoint struct {
	Round  int  `json:"x"`
	Credit int  `json:"y"`
	Win    bool `json:"win"`
}

// ChartBuffer holds a rolling window of chart data points.
type ChartBuffer struct {
	Points []ChartPoint `json:"points"`
	Max    int          `json:"-"`
}

// NewChartBuffer creates a chart buffer with the given max capacity.
func NewChartBuffer(max int) *ChartBuffer {
	if max <= 0 {
		max = 50
	}
	return &ChartBuffer{
		Points: make([]ChartPoint, 0, max),
		Max:    max,
	}
}

// Push adds a data point. When the buffer reaches twice its capacity it
// keeps every other point, always including the first and the last.
func (cb *ChartBuffer) Push(p ChartPoint) {
	cb.Points = append(cb.Points, p)

	if len(cb.Points) >= cb.Max*2 {
		decimated := make([]ChartPoint, 0, cb.Max)
		decimated = append(decimated, cb.Points[0])
		for i := 2; i < len(cb.Points)-1; i += 2 {
			decimated = append(decimated, cb.Points[i])
		}
		decimated = append(decimated, cb.Points[len(cb.Points)-1])
		cb.Points = decimated
	}
}

// Tracker is a round.Observer that accumulates Statistics. Snapshot and
// Chart are safe to call from other goroutines.
type Tracker struct {
	mu    sync.Mutex
	stats Statistics
	chart *ChartBuffer
}

// NewTracker returns an empty tracker with a chart of chartSize points.
func NewTracker(chartSize int) *Tracker {
	return &Tracker{chart: NewChartBuffer(chartSize)}
}

func (t *Tracker) RoundStarted(round.Start) {}

func (t *Tracker) ReelStopped(int, int) {}

// RoundSettled records a settled round.
func (t *Tracker) RoundSettled(o round.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.stats
	s.Rounds++
	s.Wagered += o.Bet
	s.Returned += o.Payout
	s.LuckyBonus += o.LuckyBonus
	s.Profit = s.Returned - s.Wagered
	if o.Bet == 0 {
		s.Freeloaders++
	}

	if o.Win {
		s.Wins++
		if s.CurrentStreak < 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak++
	} else {
		s.Losses++
		if s.CurrentStreak > 0 {
			s.CurrentStreak = 0
		}
		s.CurrentStreak--
	}
	if s.CurrentStreak > s.HighestStreak {
		s.HighestStreak = s.CurrentStreak
	}
	if s.CurrentStreak < s.LowestStreak {
		s.LowestStreak = s.CurrentStreak
	}
	if o.Payout > s.BiggestWin {
		s.BiggestWin = o.Payout
	}
	s.RTP = Ratio(s.Returned, s.Wagered)

	t.chart.Push(ChartPoint{Round: o.Round, Credit: o.Credit, Win: o.Win})
}

// Snapshot returns a copy of the current statistics.
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Chart returns a copy of the credit chart.
func (t *Tracker) Chart() []ChartPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ChartPoint(nil), t.chart.Points...)
}

// Ratio returns num/den rounded to RTPPlaces, or zero when den is zero.
func Ratio(num, den int) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(num)).DivRound(decimal.NewFromInt(int64(den)), RTPPlaces)
}
