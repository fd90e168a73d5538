package rules

import (
	"strings"
)

// Mode selects how many matches a directive turns into rows
type Mode string

const (
	// ModeFirst tags only the first match of the first page that matches
	ModeFirst Mode = "first"
	// ModeAll tags every match on every page
	ModeAll Mode = "all"
)

// ParseMode maps a configured mode to a Mode. Only the exact string "all"
// selects ModeAll; anything else, "ALL" included, is first-match.
func ParseMode(s string) Mode {
	if s == string(ModeAll) {
		return ModeAll
	}
	return ModeFirst
}

// FlagSet is a bit set of regex options
type FlagSet uint8

const (
	IgnoreCase FlagSet = 1 << iota
	Multiline
	DotAll
)

// DefaultFlags apply when a directive does not declare flags at all
const DefaultFlags = IgnoreCase

// HeaderFlags are always used for bid info patterns
const HeaderFlags = IgnoreCase | Multiline | DotAll

var flagNames = map[string]FlagSet{
	"IGNORECASE": IgnoreCase,
	"I":          IgnoreCase,
	"MULTILINE":  Multiline,
	"M":          Multiline,
	"DOTALL":     DotAll,
	"S":          DotAll,
}

// ParseFlag returns the flag for a name such as "IGNORECASE" or "re.DOTALL".
// Unknown names contribute no bits.
func ParseFlag(name string) FlagSet {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "RE.")
	return flagNames[name]
}

// ParseFlags ORs together every named flag
func ParseFlags(names []string) FlagSet {
	var fs FlagSet
	for _, name := range names {
		fs |= ParseFlag(name)
	}
	return fs
}

// Has reports whether all bits of other are set
func (f FlagSet) Has(other FlagSet) bool {
	return f&other == other
}

// InlinePrefix renders the set as an RE2 inline flag group, e.g. "(?is)".
// The empty set renders as "".
func (f FlagSet) InlinePrefix() string {
	var b strings.Builder
	if f.Has(IgnoreCase) {
		b.WriteByte('i')
	}
	if f.Has(Multiline) {
		b.WriteByte('m')
	}
	if f.Has(DotAll) {
		b.WriteByte('s')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

// String lists the set flag names joined by "|"
func (f FlagSet) String() string {
	var names []string
	if f.Has(IgnoreCase) {
		names = append(names, "IGNORECASE")
	}
	if f.Has(Multiline) {
		names = append(names, "MULTILINE")
	}
	if f.Has(DotAll) {
		names = append(names, "DOTALL")
	}
	return strings.Join(names, "|")
}

// Directive is one configured extraction rule
type Directive struct {
	Section   string  `json:"section"`
	Clause    string  `json:"clause"`
	Parameter string  `json:"parameter"`
	Unit      string  `json:"unit"`
	Notes     string  `json:"notes"`
	Mode      Mode    `json:"mode"`
	Pattern   string  `json:"pattern"`
	ValueExpr string  `json:"value_expr"`
	Flags     FlagSet `json:"flags"`
}

const (
	DefaultSection   = "General"
	DefaultValueExpr = "{0}"
)

// NewDirective returns a directive carrying the neutral defaults
func NewDirective() Directive {
	return Directive{
		Section:   DefaultSection,
		Mode:      ModeFirst,
		ValueExpr: DefaultValueExpr,
		Flags:     DefaultFlags,
	}
}

// Name identifies the directive in diagnostics
func (d Directive) Name() string {
	if d.Parameter != "" {
		return d.Section + "/" + d.Parameter
	}
	return d.Section + "/" + d.Clause
}
