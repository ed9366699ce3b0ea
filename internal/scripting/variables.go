package scripting

import (
	"github.com/dop251/goja"

	"github.com/MJE43/pocketbandit/internal/player"
	"github.com/MJE43/pocketbandit/internal/rules"
)

// Variables is the state shared with the script. The first block is
// read-only for the script; the second is what dobet() decides.
type Variables struct {
	Credit      int              `json:"credit"`
	Round       int              `json:"round"`
	Win         bool             `json:"win"`
	Payout      int              `json:"payout"`
	PreviousBet int              `json:"previousbet"`
	Payline     [rules.Reels]int `json:"payline"`
	Streak      int              `json:"streak"`
	LuckyCoin   int              `json:"luckycoin"`
	Bets        int              `json:"bets"`
	Wins        int              `json:"wins"`
	Losses      int              `json:"losses"`
	Running     bool             `json:"running"`

	NextBet  int  `json:"nextbet"`
	PullTime int  `json:"pulltime"`
	Brake    bool `json:"brake"`
}

func injectConstants(vm *goja.Runtime) {
	vm.Set("BET_SLOTS", player.BetSlots)
	vm.Set("REELS", rules.Reels)
	vm.Set("WILDCARD", rules.Wildcard)
	vm.Set("NO_MATCH", rules.NoMatch)
}

func injectVariables(vm *goja.Runtime, vars *Variables) {
	vm.Set("credit", vars.Credit)
	vm.Set("balance", vars.Credit)
	vm.Set("round", vars.Round)
	vm.Set("win", vars.Win)
	vm.Set("payout", vars.Payout)
	vm.Set("previousbet", vars.PreviousBet)
	vm.Set("payline", append([]int(nil), vars.Payline[:]...))
	vm.Set("streak", vars.Streak)
	vm.Set("currentstreak", vars.Streak)
	vm.Set("luckycoin", vars.LuckyCoin)
	vm.Set("bets", vars.Bets)
	vm.Set("wins", vars.Wins)
	vm.Set("losses", vars.Losses)
	vm.Set("running", vars.Running)

	vm.Set("nextbet", vars.NextBet)
	vm.Set("pulltime", vars.PullTime)
	vm.Set("brake", vars.Brake)
}

// syncFromVM reads back only what the script is allowed to change.
func syncFromVM(vm *goja.Runtime, vars *Variables) {
	vars.NextBet = toInt(vm.Get("nextbet"))
	vars.PullTime = toInt(vm.Get("pulltime"))
	vars.Brake = toBool(vm.Get("brake"))
}

func toInt(v goja.Value) int {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return 0
	}
	return int(v.ToInteger())
}

func toBool(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	return v.ToBoolean()
}
