package rules

import (
	"fmt"
	"io/fs"

	"github.com/MJE43/pocketbandit/internal/prefs"
)

// Catalog is the alphabetical list of rule files with a persisted selection.
type Catalog struct {
	fsys  fs.FS
	names []string
	prefs prefs.Preferences
}

// NewCatalog lists the rule files in fsys. It fails when there are none.
func NewCatalog(fsys fs.FS, p prefs.Preferences) (*Catalog, error) {
	names, err := List(fsys)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, &ConfigurationError{Reason: "no rule files found"}
	}
	return &Catalog{fsys: fsys, names: names, prefs: p}, nil
}

// Names returns the rule file names in navigation order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

func (c *Catalog) index() int {
	current := c.prefs.String(prefs.KeyRuleFile, c.names[0])
	for i, n := range c.names {
		if n == current {
			return i
		}
	}
	return 0
}

// Current returns the selected rule file name.
func (c *Catalog) Current() string {
	return c.names[c.index()]
}

// Select makes name the current rule file.
func (c *Catalog) Select(name string) error {
	for _, n := range c.names {
		if n == name {
			c.prefs.SetString(prefs.KeyRuleFile, name)
			return nil
		}
	}
	return fmt.Errorf("rules: unknown rule file %q", name)
}

// Next selects the following rule file, wrapping to the first.
func (c *Catalog) Next() string {
	name := c.names[(c.index()+1)%len(c.names)]
	c.prefs.SetString(prefs.KeyRuleFile, name)
	return name
}

// Previous selects the preceding rule file, wrapping to the last.
func (c *Catalog) Previous() string {
	name := c.names[(c.index()-1+len(c.names))%len(c.names)]
	c.prefs.SetString(prefs.KeyRuleFile, name)
	return name
}

// Load loads the current rule file.
func (c *Catalog) Load() (*Variation, error) {
	return Load(c.fsys, c.Current())
}

// LoadAll loads every rule file in the catalog.
func (c *Catalog) LoadAll() ([]*Variation, error) {
	out := make([]*Variation, 0, len(c.names))
	for _, n := range c.names {
		v, err := Load(c.fsys, n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
