package extraction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errUnclosedField  = errors.New("unclosed '{' in value template")
	errStrayBrace     = errors.New("single '}' in value template")
	errUnsupported    = errors.New("unsupported placeholder")
	errUnknownCapture = errors.New("unknown capture group")
)

// CleanText collapses every run of whitespace to one space and trims the ends
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RenderTemplate substitutes {key} placeholders from fields. "{{" and "}}"
// are literal braces. Auto-numbered "{}" placeholders, format specs and
// conversions ("{0:>5}", "{0!r}") are not supported and fail, as does any
// key missing from fields.
func RenderTemplate(tmpl string, fields map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", errUnclosedField
			}
			key := tmpl[i+1 : i+1+end]
			if key == "" || strings.ContainsAny(key, ":![].{") {
				return "", fmt.Errorf("%w: {%s}", errUnsupported, key)
			}
			value, ok := fields[key]
			if !ok {
				return "", fmt.Errorf("%w: {%s}", errUnknownCapture, key)
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", errStrayBrace
		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// match is one regex hit with its capture groups already sliced out of the page text
type match struct {
	page   int
	text   string   // entire matched span
	groups []string // capture groups 1..n, "" when a group did not participate
	names  []string // group names aligned with groups, "" when unnamed
}

func newMatch(page int, text string, loc []int, names []string) match {
	m := match{
		page:   page,
		text:   text[loc[0]:loc[1]],
		groups: make([]string, 0, len(loc)/2-1),
		names:  names[1:],
	}
	for g := 1; g < len(loc)/2; g++ {
		start, end := loc[2*g], loc[2*g+1]
		if start < 0 {
			m.groups = append(m.groups, "")
			continue
		}
		m.groups = append(m.groups, text[start:end])
	}
	return m
}

// fields maps each capture to its cleaned text under its zero-based
// position and, when named, under its name
func (m match) fields() map[string]string {
	fields := make(map[string]string, 2*len(m.groups))
	for i, g := range m.groups {
		fields[fmt.Sprint(i)] = CleanText(g)
	}
	for i, name := range m.names {
		if name != "" {
			fields[name] = CleanText(m.groups[i])
		}
	}
	return fields
}

// fallback is the first capture if the pattern has any, else the whole match
func (m match) fallback() string {
	if len(m.groups) > 0 {
		return CleanText(m.groups[0])
	}
	return CleanText(m.text)
}

// render resolves tmpl against the match, falling back when resolution fails
func (m match) render(tmpl string) (string, error) {
	value, err := RenderTemplate(tmpl, m.fields())
	if err != nil {
		return m.fallback(), err
	}
	return value, nil
}
