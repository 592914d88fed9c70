// Package rules holds the static data tables the heuristic filter and the
// human classifier decide against: meta-namespace patterns, the VIP
// allow-list, and the category keyword sets. None of this is code — it is
// loaded once at startup so an operator can retune the ruleset without a
// rebuild.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Tables is the immutable set of rule tables consulted by Filter and
// Classify. Construct one with Load; never mutate the returned value.
type Tables struct {
	MetaPatterns    []string
	VIPs            mapset.Set[string]
	PersonPositive  []string
	PersonNegative  []string
	PersonException []string
}

type rawTables struct {
	MetaPatterns    []string `yaml:"meta_patterns"`
	VIPs            []string `yaml:"vips"`
	PersonPositive  []string `yaml:"person_positive"`
	PersonNegative  []string `yaml:"person_negative"`
	PersonException []string `yaml:"person_exception"`
}

// Load parses the embedded rule tables, then merges an optional operator
// override file over them if overridePath is non-empty. The override file
// uses the same YAML shape; any table it defines replaces the embedded
// table of the same name wholesale (no per-entry merge).
func Load(overridePath string) (*Tables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(defaultRulesYAML, &raw); err != nil {
		return nil, fmt.Errorf("rules: parse embedded rules.yaml: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("rules: read override %q: %w", overridePath, err)
		}
		var override rawTables
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("rules: parse override %q: %w", overridePath, err)
		}
		if len(override.MetaPatterns) > 0 {
			raw.MetaPatterns = override.MetaPatterns
		}
		if len(override.VIPs) > 0 {
			raw.VIPs = override.VIPs
		}
		if len(override.PersonPositive) > 0 {
			raw.PersonPositive = override.PersonPositive
		}
		if len(override.PersonNegative) > 0 {
			raw.PersonNegative = override.PersonNegative
		}
		if len(override.PersonException) > 0 {
			raw.PersonException = override.PersonException
		}
	}

	vips := mapset.NewThreadUnsafeSet[string]()
	for _, v := range raw.VIPs {
		vips.Add(v)
	}

	return &Tables{
		MetaPatterns:    lowerAll(raw.MetaPatterns),
		VIPs:            vips,
		PersonPositive:  lowerAll(raw.PersonPositive),
		PersonNegative:  lowerAll(raw.PersonNegative),
		PersonException: lowerAll(raw.PersonException),
	}, nil
}

// MustLoad is Load without an override, panicking on error. Used in tests
// and small tools where an error here means the embedded asset itself is
// broken.
func MustLoad() *Tables {
	t, err := Load("")
	if err != nil {
		panic(err)
	}
	return t
}

// IsVIP reports whether title is on the allow-list, bypassing the category
// check entirely.
func (t *Tables) IsVIP(title string) bool {
	return t.VIPs.Contains(title)
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}
