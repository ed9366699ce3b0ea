package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Definition is the on-disk rule record.
type Definition struct {
	Name                    string   `json:"name" yaml:"name"`
	Machine                 string   `json:"machine" yaml:"machine"`
	Symbols                 []string `json:"symbols" yaml:"symbols"`
	PayTable                [][]int  `json:"paytable" yaml:"paytable"`
	Weights                 [][]int  `json:"weights,omitempty" yaml:"weights,omitempty"`
	WeightCounts            [][]int  `json:"weightCounts,omitempty" yaml:"weightCounts,omitempty"`
	SeedCapital             int      `json:"seedCapital" yaml:"seedCapital"`
	LuckyCoinBonus          int      `json:"luckyCoinBonus" yaml:"luckyCoinBonus"`
	LuckyCoinReRollInterval int      `json:"luckyCoinReRollInterval" yaml:"luckyCoinReRollInterval"`
	LuckyCoinChance         float64  `json:"luckyCoinChance" yaml:"luckyCoinChance"`
	Sequence                []int    `json:"sequence,omitempty" yaml:"sequence,omitempty"`
}

// ExpandCounts turns per-symbol counts into a draw list, e.g. [2,1] becomes
// [0,0,1].
func ExpandCounts(counts []int) []int {
	var out []int
	for id, n := range counts {
		for ; n > 0; n-- {
			out = append(out, id)
		}
	}
	return out
}

// Variation converts the definition and validates the result.
func (d *Definition) Variation(resource string) (*Variation, error) {
	name := d.Name
	if name == "" {
		name = strings.TrimSuffix(path.Base(resource), path.Ext(resource))
	}
	v := &Variation{
		Name:                    name,
		Machine:                 d.Machine,
		Symbols:                 append([]string(nil), d.Symbols...),
		SeedCapital:             d.SeedCapital,
		LuckyCoinBonus:          d.LuckyCoinBonus,
		LuckyCoinReRollInterval: d.LuckyCoinReRollInterval,
		LuckyCoinChance:         d.LuckyCoinChance,
		Sequence:                append([]int(nil), d.Sequence...),
	}
	bad := func(format string, args ...any) error {
		return &ConfigurationError{Resource: resource, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case len(d.Weights) > 0 && len(d.WeightCounts) > 0:
		return nil, bad("weights and weightCounts are mutually exclusive")
	case len(d.Weights) > 0:
		if len(d.Weights) != Reels {
			return nil, bad("expected %d weight tables, got %d", Reels, len(d.Weights))
		}
		for i := range v.Weights {
			v.Weights[i] = append([]int(nil), d.Weights[i]...)
		}
	case len(d.WeightCounts) > 0:
		if len(d.WeightCounts) != Reels {
			return nil, bad("expected %d weight tables, got %d", Reels, len(d.WeightCounts))
		}
		for i := range v.Weights {
			if len(d.WeightCounts[i]) > len(d.Symbols) {
				return nil, bad("weight counts for reel %d reference missing symbols", i)
			}
			v.Weights[i] = ExpandCounts(d.WeightCounts[i])
		}
	default:
		return nil, bad("no weight tables defined")
	}

	for i, row := range d.PayTable {
		if len(row) != Reels+1 {
			return nil, bad("pay table row %d has %d columns, want %d", i, len(row), Reels+1)
		}
		v.PayTable = append(v.PayTable, Rule{
			Slots:         [Reels]int{row[0], row[1], row[2]},
			PayoutPerCoin: row[3],
		})
	}

	if err := v.Validate(); err != nil {
		var cerr *ConfigurationError
		if errors.As(err, &cerr) {
			cerr.Resource = resource
		}
		return nil, err
	}
	return v, nil
}

// IsRuleFile reports whether name has a supported rule file extension.
func IsRuleFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses raw rule file content. The format is chosen by extension.
func Decode(resource string, data []byte) (*Variation, error) {
	var def Definition
	switch strings.ToLower(path.Ext(resource)) {
	case ".json":
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, &ConfigurationError{Resource: resource, Reason: "decode json: " + err.Error()}
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, &ConfigurationError{Resource: resource, Reason: "decode yaml: " + err.Error()}
		}
	default:
		return nil, &ConfigurationError{Resource: resource, Reason: "unsupported rule file extension"}
	}
	return def.Variation(resource)
}

// Load reads and validates the named rule file from fsys.
func Load(fsys fs.FS, name string) (*Variation, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", name, err)
	}
	return Decode(name, data)
}

// List returns the rule files at the root of fsys, sorted by name.
func List(fsys fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("rules: list: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsRuleFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
