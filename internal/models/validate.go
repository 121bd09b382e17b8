package models

import (
	"errors"
	"fmt"
	"math"
	"path"
	"strings"
	"unicode/utf8"
)

// ValidateEntryName checks that name can be used as a single directory
// entry: valid UTF-8, not empty, not "." or "..", and free of path
// separators and NUL bytes.
func ValidateEntryName(name string) error {
	switch {
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: entry name %q", ErrEncoding, name)
	case name == "":
		return fmt.Errorf("%w: entry name is empty", ErrInvalidRule)
	case name == "." || name == "..":
		return fmt.Errorf("%w: entry name %q is reserved", ErrInvalidRule, name)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("%w: entry name %q contains a path separator or NUL", ErrInvalidRule, name)
	}
	return nil
}

// ValidateRule checks the static invariants of a single rule. When
// asName is set the rule must also be able to produce an entry name.
func ValidateRule(rule Rule, asName bool) error {
	rule = NormalizeRule(rule)
	if rule == nil {
		return fmt.Errorf("%w: rule is missing", ErrInvalidRule)
	}
	if asName && !IsNameSafe(rule) {
		return fmt.Errorf("%w: %s rule cannot be used as a name", ErrInvalidRule, RuleKind(rule))
	}

	switch r := rule.(type) {
	case Cyclic:
		if r.Length < 0 {
			return fmt.Errorf("%w: cyclic length %d is negative", ErrInvalidRule, r.Length)
		}
		if r.Length > 0 && len(r.Source) == 0 {
			return fmt.Errorf("%w: cyclic source is empty", ErrInvalidRule)
		}
		if asName {
			return ValidateEntryName(string(cycle(r.Source, r.Length)))
		}
	case WeightedSample:
		if r.Length < 0 {
			return fmt.Errorf("%w: sample length %d is negative", ErrInvalidRule, r.Length)
		}
		if len(r.Choices) == 0 {
			return fmt.Errorf("%w: sample has no choices", ErrInvalidRule)
		}
		if r.Length > 0 && allEmpty(r.Choices) {
			return fmt.Errorf("%w: every sample choice is empty", ErrInvalidRule)
		}
	case BiasedBitStream:
		if r.Length < 0 {
			return fmt.Errorf("%w: bitstream length %d is negative", ErrInvalidRule, r.Length)
		}
		if math.IsNaN(r.Probability) || r.Probability < 0 || r.Probability > 1 {
			return fmt.Errorf("%w: bitstream probability %v is outside [0, 1]", ErrInvalidRule, r.Probability)
		}
	case Literal:
		if asName {
			return ValidateEntryName(r.Value)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %T", ErrInvalidRule, rule)
	}
	return nil
}

// Validate walks a configuration tree and reports every static violation
// it finds. Each error carries the slash-separated path of the offending
// node. Names produced at random cannot be checked here.
func Validate(node Node) error {
	var errs []error
	validateNode(node, "", &errs)
	return errors.Join(errs...)
}

func validateNode(node Node, parent string, errs *[]error) {
	node = NormalizeNode(node)
	if node == nil {
		*errs = append(*errs, fmt.Errorf("%s: %w: node is missing", displayPath(parent), ErrInvalidRule))
		return
	}

	here := path.Join(parent, staticName(node.NameRule()))
	if err := ValidateRule(node.NameRule(), true); err != nil {
		*errs = append(*errs, fmt.Errorf("%s: name: %w", displayPath(here), err))
	}

	switch n := node.(type) {
	case File:
		if err := ValidateRule(n.Content, false); err != nil {
			*errs = append(*errs, fmt.Errorf("%s: content: %w", displayPath(here), err))
		}
	case Directory:
		seen := make(map[string]bool, len(n.Children))
		for _, child := range n.Children {
			if child := NormalizeNode(child); child != nil {
				if name, ok := knownName(child.NameRule()); ok {
					if seen[name] {
						*errs = append(*errs, fmt.Errorf("%s: %w: %q", displayPath(here), ErrDuplicateName, name))
					}
					seen[name] = true
				}
			}
			validateNode(child, here, errs)
		}
	}
}

// knownName returns the name a rule resolves to when it does not depend
// on a random source.
func knownName(rule Rule) (string, bool) {
	switch r := NormalizeRule(rule).(type) {
	case Literal:
		return r.Value, r.Value != ""
	case Cyclic:
		name := cycle(r.Source, r.Length)
		return string(name), len(name) > 0 && utf8.Valid(name)
	}
	return "", false
}

// staticName is the known name of a node, or a placeholder naming the
// rule kind.
func staticName(rule Rule) string {
	if name, ok := knownName(rule); ok {
		return name
	}
	return "<" + RuleKind(rule) + ">"
}

func displayPath(p string) string {
	if p == "" {
		return "<root>"
	}
	return p
}

func cycle(source []byte, length int) []byte {
	if len(source) == 0 || length <= 0 {
		return nil
	}
	out := make([]byte, length)
	for i := range out {
		out[i] = source[i%len(source)]
	}
	return out
}

func allEmpty(choices [][]byte) bool {
	for _, c := range choices {
		if len(c) > 0 {
			return false
		}
	}
	return true
}
