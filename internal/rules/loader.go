// Package rules loads the extraction directives, bid info patterns and
// default values that drive a tagging build.
//
// Patterns use RE2 syntax (Go's regexp). Python re patterns carry over except
// for look-around, backreferences and conditionals, which RE2 rejects; such a
// directive is skipped with a warning. \Z is read as end of text. Without
// MULTILINE, $ matches only at the very end of a page, not before a trailing
// newline.
package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a rules document that cannot be used
var ErrMalformed = errors.New("malformed rules")

const (
	keyExtractors = "extractors"
	keyBidInfoMap = "bid_info_map"
	keyDefaults   = "defaults"
)

// RuleSet is everything a rules file declares
type RuleSet struct {
	Extractors []Directive
	BidInfoMap *OrderedMap // field name -> pattern
	Defaults   *OrderedMap // field name -> default value
}

// Empty returns a rule set with no rules
func Empty() *RuleSet {
	return &RuleSet{
		BidInfoMap: NewOrderedMap(),
		Defaults:   NewOrderedMap(),
	}
}

// Loader reads rule files
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a loader reporting skipped entries to logger
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads and parses the rules file at path. An empty path yields an empty rule set.
func (l *Loader) Load(path string) (*RuleSet, error) {
	if path == "" {
		return Empty(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rs, err := l.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}

	l.logger.Debug("Loaded rules",
		zap.String("path", path),
		zap.Int("extractors", len(rs.Extractors)),
		zap.Int("bid_info_fields", rs.BidInfoMap.Len()),
		zap.Int("defaults", rs.Defaults.Len()))

	return rs, nil
}

// Parse decodes a YAML rules document. Missing collections default to empty;
// a document that is not valid YAML, or whose collections have the wrong
// shape, is rejected with ErrMalformed.
func (l *Loader) Parse(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	rs := Empty()

	root := resolve(&doc)
	if root == nil || isNull(root) {
		return rs, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformed)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := resolve(root.Content[i+1])

		var err error
		switch key {
		case keyExtractors:
			rs.Extractors, err = l.parseExtractors(value)
		case keyBidInfoMap:
			rs.BidInfoMap, err = l.parseStringMap(keyBidInfoMap, value)
		case keyDefaults:
			rs.Defaults, err = l.parseStringMap(keyDefaults, value)
		default:
			l.logger.Debug("Ignoring unknown rules key", zap.String("key", key))
		}
		if err != nil {
			return nil, err
		}
	}

	return rs, nil
}

func (l *Loader) parseExtractors(node *yaml.Node) ([]Directive, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s must be a list", ErrMalformed, keyExtractors)
	}

	directives := make([]Directive, 0, len(node.Content))
	for i, item := range node.Content {
		d, ok := l.parseDirective(i, resolve(item))
		if ok {
			directives = append(directives, d)
		}
	}
	return directives, nil
}

// parseDirective decodes one extractor entry field by field so that a value
// of an unexpected shape falls back to its default instead of failing the file.
func (l *Loader) parseDirective(index int, node *yaml.Node) (Directive, bool) {
	log := l.logger.With(zap.Int("extractor", index))

	if node == nil || node.Kind != yaml.MappingNode {
		log.Warn("Skipping extractor that is not a mapping")
		return Directive{}, false
	}

	d := NewDirective()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])

		if key == "flags" {
			if names, ok := flagList(value); ok {
				d.Flags = ParseFlags(names)
			} else {
				log.Warn("Ignoring flags of unexpected shape")
			}
			continue
		}

		s, ok := scalar(value)
		if !ok {
			log.Warn("Ignoring extractor field of unexpected shape", zap.String("field", key))
			continue
		}
		if isNull(value) {
			continue
		}

		switch key {
		case "section":
			d.Section = s
		case "clause":
			d.Clause = s
		case "parameter":
			d.Parameter = s
		case "unit":
			d.Unit = s
		case "notes":
			d.Notes = s
		case "mode":
			d.Mode = ParseMode(s)
		case "pattern":
			d.Pattern = s
		case "value_expr":
			d.ValueExpr = s
		default:
			log.Debug("Ignoring unknown extractor field", zap.String("field", key))
		}
	}

	if d.Pattern == "" {
		log.Warn("Skipping extractor without a pattern", zap.String("directive", d.Name()))
		return Directive{}, false
	}

	return d, true
}

func (l *Loader) parseStringMap(name string, node *yaml.Node) (*OrderedMap, error) {
	m := NewOrderedMap()
	if isNull(node) {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s must be a mapping", ErrMalformed, name)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])

		s, ok := scalar(value)
		if !ok {
			l.logger.Warn("Skipping entry of unexpected shape", zap.String("collection", name), zap.String("field", key))
			continue
		}
		if isNull(value) {
			s = ""
		}
		m.Set(key, s)
	}
	return m, nil
}

// flagList accepts either a list of names or a single "A|B" / "A,B" string
func flagList(node *yaml.Node) ([]string, bool) {
	if isNull(node) {
		return []string{DefaultFlags.String()}, true
	}

	switch node.Kind {
	case yaml.SequenceNode:
		names := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if s, ok := scalar(resolve(item)); ok {
				names = append(names, s)
			}
		}
		return names, true
	case yaml.ScalarNode:
		return strings.FieldsFunc(node.Value, func(r rune) bool {
			return r == '|' || r == ',' || r == ' '
		}), true
	}
	return nil, false
}

func resolve(node *yaml.Node) *yaml.Node {
	for node != nil {
		switch node.Kind {
		case yaml.DocumentNode:
			if len(node.Content) == 0 {
				return nil
			}
			node = node.Content[0]
		case yaml.AliasNode:
			node = node.Alias
		case 0:
			return nil
		default:
			return node
		}
	}
	return nil
}

func scalar(node *yaml.Node) (string, bool) {
	if node == nil {
		return "", true
	}
	if node.Kind != yaml.ScalarNode {
		return "", false
	}
	return node.Value, true
}

func isNull(node *yaml.Node) bool {
	return node == nil || (node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null")
}
