// Command rtp prints the exact and simulated return to player of rule files.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"

	"github.com/MJE43/pocketbandit/internal/engine"
	"github.com/MJE43/pocketbandit/internal/rules"
	"github.com/MJE43/pocketbandit/internal/rules/builtin"
	"github.com/MJE43/pocketbandit/internal/stats"
)

type result struct {
	File       string            `json:"file"`
	Exact      stats.Report      `json:"exact"`
	Simulation *stats.Simulation `json:"simulation,omitempty"`
}

func main() {
	dir := flag.String("dir", "", "directory of rule files (default: built-in rules)")
	rule := flag.String("rule", "", "only report this rule file")
	spins := flag.Int("spins", 0, "Monte Carlo spins per rule file (0 disables)")
	seed := flag.Uint64("seed", 1, "simulation seed")
	serverSeed := flag.String("server-seed", "", "simulate with the seeded source instead")
	clientSeed := flag.String("client-seed", "pocketbandit", "client seed for -server-seed")
	detail := flag.Bool("rules", false, "print per-rule shares")
	asJSON := flag.Bool("json", false, "print JSON")
	flag.Parse()

	var fsys fs.FS = builtin.FS
	if *dir != "" {
		fsys = os.DirFS(*dir)
	}
	names, err := rules.List(fsys)
	if err != nil {
		fatal(err)
	}
	if *rule != "" {
		names = []string{*rule}
	}

	var results []result
	for _, name := range names {
		v, err := rules.Load(fsys, name)
		if err != nil {
			fatal(err)
		}
		res := result{File: name, Exact: stats.ExactRTP(v)}
		if *spins > 0 {
			var src engine.Source = engine.NewMathSource(*seed)
			if *serverSeed != "" {
				src = engine.NewSeededSource(*serverSeed, *clientSeed, 0)
			}
			sim := stats.Simulate(v, src, *spins)
			res.Simulation = &sim
		}
		results = append(results, res)
	}

	if *asJSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fatal(err)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tVARIATION\tRTP\tHIT RATE\tSIM RTP\tSIM HIT RATE")
	for _, r := range results {
		simRTP, simHit := "-", "-"
		if r.Simulation != nil {
			simRTP, simHit = r.Simulation.RTP.String(), r.Simulation.HitRate.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.File, r.Exact.Variation, r.Exact.RTP, r.Exact.HitRate, simRTP, simHit)
		if *detail {
			for _, share := range r.Exact.Rules {
				fmt.Fprintf(w, "\t  rule %d\tp=%s\treturn=%s\t\t\n", share.Rule, share.Probability, share.Return)
			}
		}
	}
	w.Flush()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "rtp:", err)
	os.Exit(1)
}
