// Package extraction applies regex directives to page text and renders the
// matches into tag rows and header field values.
package extraction

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/a3tai/tender-ai-tagger/internal/pdf"
	"github.com/a3tai/tender-ai-tagger/internal/rules"
)

// TagRow is one tagged parameter value for the AI_Tagging_Master sheet
type TagRow struct {
	Section    string `json:"section"`
	ClauseRef  string `json:"clause_ref"`
	Parameter  string `json:"parameter"`
	Value      string `json:"value"`
	Unit       string `json:"unit"`
	Notes      string `json:"notes"`
	SourcePage int    `json:"source_page"`
}

// Engine runs directives over page sequences. Compiled patterns are cached
// by pattern and flag set; an Engine is not safe for concurrent use.
type Engine struct {
	logger *zap.Logger
	cache  map[string]*regexp.Regexp
}

// NewEngine creates an extraction engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger,
		cache:  make(map[string]*regexp.Regexp),
	}
}

// Compile compiles pattern with flags mapped to RE2 inline options.
// Patterns follow RE2 syntax; \Z is accepted as end of text.
func (e *Engine) Compile(pattern string, flags rules.FlagSet) (*regexp.Regexp, error) {
	source := flags.InlinePrefix() + translatePattern(pattern)
	if re, ok := e.cache[source]; ok {
		return re, nil
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, describeSyntaxError(pattern, err)
	}
	e.cache[source] = re
	return re, nil
}

// findFirst returns the leftmost match on the first page that has one
func findFirst(re *regexp.Regexp, pages []pdf.Page) (match, bool) {
	names := re.SubexpNames()
	for _, page := range pages {
		if loc := re.FindStringSubmatchIndex(page.Text); loc != nil {
			return newMatch(page.Number, page.Text, loc, names), true
		}
	}
	return match{}, false
}

// findAll returns every match in page order, left to right within a page
func findAll(re *regexp.Regexp, pages []pdf.Page) []match {
	names := re.SubexpNames()
	var hits []match
	for _, page := range pages {
		for _, loc := range re.FindAllStringSubmatchIndex(page.Text, -1) {
			hits = append(hits, newMatch(page.Number, page.Text, loc, names))
		}
	}
	return hits
}

// Extract applies one directive to pages. A directive that matches nothing,
// or whose pattern does not compile, yields no rows.
func (e *Engine) Extract(pages []pdf.Page, d rules.Directive) []TagRow {
	log := e.logger.With(zap.String("directive", d.Name()))

	re, err := e.Compile(d.Pattern, d.Flags)
	if err != nil {
		log.Warn("Skipping directive", zap.Error(err))
		return nil
	}

	var hits []match
	if d.Mode == rules.ModeAll {
		hits = findAll(re, pages)
	} else if m, ok := findFirst(re, pages); ok {
		hits = []match{m}
	}

	rows := make([]TagRow, 0, len(hits))
	for _, m := range hits {
		value, err := m.render(d.ValueExpr)
		if err != nil {
			log.Debug("Value template fell back to capture text",
				zap.String("template", d.ValueExpr), zap.Int("page", m.page), zap.Error(err))
		}
		rows = append(rows, TagRow{
			Section:    d.Section,
			ClauseRef:  d.Clause,
			Parameter:  d.Parameter,
			Value:      value,
			Unit:       d.Unit,
			Notes:      d.Notes,
			SourcePage: m.page,
		})
	}

	log.Debug("Directive evaluated", zap.String("mode", string(d.Mode)), zap.Int("rows", len(rows)))
	return rows
}

// ExtractAll runs directives in declaration order and concatenates their rows
func (e *Engine) ExtractAll(pages []pdf.Page, directives []rules.Directive) []TagRow {
	var rows []TagRow
	for _, d := range directives {
		rows = append(rows, e.Extract(pages, d)...)
	}
	return rows
}

// FirstCapture returns the cleaned text of capture group 1 of the first
// match of pattern, or "" when nothing matches
func (e *Engine) FirstCapture(pages []pdf.Page, pattern string, flags rules.FlagSet) (string, error) {
	re, err := e.Compile(pattern, flags)
	if err != nil {
		return "", err
	}
	if re.NumSubexp() < 1 {
		return "", fmt.Errorf("pattern %q has no capture group", pattern)
	}

	m, ok := findFirst(re, pages)
	if !ok {
		return "", nil
	}
	return CleanText(m.groups[0]), nil
}

// HeaderFields evaluates every bid info pattern with first-match semantics
// and the fixed header flags. Fields keep the pattern declaration order.
func (e *Engine) HeaderFields(pages []pdf.Page, patterns *rules.OrderedMap) *rules.OrderedMap {
	values := rules.NewOrderedMap()
	for _, entry := range patterns.Entries() {
		value, err := e.FirstCapture(pages, entry.Value, rules.HeaderFlags)
		if err != nil {
			e.logger.Warn("Bid info pattern unusable", zap.String("field", entry.Key), zap.Error(err))
		}
		values.Set(entry.Key, value)
	}
	return values
}
