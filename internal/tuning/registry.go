package tuning

import (
	"fmt"
	"sort"
	"strings"
)

// Params carries the values some rules need when built by name.
type Params struct {
	Lambda     float64
	Kp, Ti, Td float64
}

var aliases = map[string]string{
	"zn":               "ziegler-nichols",
	"ziegler-nichols":  "ziegler-nichols",
	"chr":              "chr-20",
	"chr20":            "chr-20",
	"chr-20":           "chr-20",
	"chr-overshoot":    "chr-20",
	"chr0":             "chr-0",
	"chr-0":            "chr-0",
	"chr-no-overshoot": "chr-0",
	"itae":             "itae",
	"imc":              "imc",
	"cc":               "cohen-coon",
	"cohen-coon":       "cohen-coon",
	"manual":           "manual",
}

// ParseRule builds a rule from its name or alias.
func ParseRule(name string, p Params) (Rule, error) {
	canonical, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown tuning rule: %s", name)
	}
	switch canonical {
	case "ziegler-nichols":
		return ZieglerNichols{}, nil
	case "chr-20":
		return CHROvershoot{}, nil
	case "chr-0":
		return CHRNoOvershoot{}, nil
	case "itae":
		return ITAE{}, nil
	case "imc":
		l := p.Lambda
		if l == 0 {
			l = DefaultLambda
		}
		return IMC{Lambda: l}, nil
	case "cohen-coon":
		return CohenCoon{}, nil
	default:
		return Manual{Kp: p.Kp, Ti: p.Ti, Td: p.Td}, nil
	}
}

// Automatic returns one instance of every model-based rule.
func Automatic(lambda float64) []Rule {
	if lambda == 0 {
		lambda = DefaultLambda
	}
	return []Rule{
		ZieglerNichols{},
		CHROvershoot{},
		CHRNoOvershoot{},
		ITAE{},
		IMC{Lambda: lambda},
		CohenCoon{},
	}
}

// Names lists the canonical rule names.
func Names() []string {
	seen := make(map[string]bool)
	for _, v := range aliases {
		seen[v] = true
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
