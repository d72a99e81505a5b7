package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Thresholds holds sentence-length limits for the lexicon validator.
type Thresholds struct {
	MaxSentenceWords int `yaml:"max_sentence_words"`
	MaxFactTokens    int `yaml:"max_fact_tokens"`
}

// LexiconRules lists forbidden language. Verbs and terms are whole-word,
// case-insensitive matches; patterns are regular expressions.
type LexiconRules struct {
	ForbiddenVerbs    []string `yaml:"forbidden_verbs"`
	ForbiddenPatterns []string `yaml:"forbidden_patterns"`
	ForbiddenTerms    []string `yaml:"forbidden_terms"`
}

// FieldPolicy governs provenance severities. MissingVerifiedAtSeverity is
// accepted for config compatibility but ignored: a missing or malformed
// verified_at is always an error.
type FieldPolicy struct {
	MissingSourceSeverity     Severity    `yaml:"missing_source_severity"`
	MissingVerifiedAtSeverity Severity    `yaml:"missing_verified_at_severity"`
	NullableSourceTypes       []FieldType `yaml:"nullable_source_types"`
}

// NumberRules configures the number-grounding validator. Exclusions are
// named rules applied to candidate numbers before the grounding check:
// "date" (ISO date spans), "ordinal" (1st, 2nd, ...), "list_index"
// (line-start enumeration). The list is configuration so that new false
// positive classes are handled by widening it, never by fuzzy matching.
type NumberRules struct {
	AllowedNumbers []string `yaml:"allowed_numbers"`
	IgnoreYears    bool     `yaml:"ignore_years"`
	Exclusions     []string `yaml:"exclusions"`
}

// RuleConfig is the complete rule set for one validation run. It is built
// once, compiled once, and treated as read-only afterwards, so it may be
// shared across concurrent validations.
type RuleConfig struct {
	Thresholds  Thresholds        `yaml:"thresholds"`
	Lexicon     LexiconRules      `yaml:"lexicon_rules"`
	FieldPolicy FieldPolicy       `yaml:"field_policy"`
	Numbers     NumberRules       `yaml:"numbers"`
	Fields      []FieldDescriptor `yaml:"fields"`
	Overrides   []OverrideRecord  `yaml:"overrides,omitempty"`

	// Compiled state, populated by Compile. Never mutated afterwards.
	termPatterns   []termPattern
	patternRegexps []*regexp.Regexp
	nullableTypes  map[FieldType]bool
	allowedNumbers map[string]bool
	exclusionRules map[string]bool
	compiled       bool
}

type termPattern struct {
	term string
	re   *regexp.Regexp
}

// DefaultConfig returns the built-in rule set. Callers still need Compile.
func DefaultConfig() *RuleConfig {
	return &RuleConfig{
		Thresholds: Thresholds{
			MaxSentenceWords: 22,
			MaxFactTokens:    18,
		},
		Lexicon: LexiconRules{
			ForbiddenVerbs: []string{
				"guarantee", "guarantees", "guaranteed",
				"ensure", "ensures", "promise", "promises",
			},
			ForbiddenTerms: []string{
				"always", "never", "instantly", "risk-free",
			},
			ForbiddenPatterns: []string{
				`(?i)100\s?%\s?(safe|sure|guaranteed)`,
			},
		},
		FieldPolicy: FieldPolicy{
			MissingSourceSeverity:     SeverityWarning,
			MissingVerifiedAtSeverity: SeverityError,
			NullableSourceTypes:       []FieldType{FieldEnum},
		},
		Numbers: NumberRules{
			IgnoreYears: true,
			Exclusions:  []string{"date", "ordinal", "list_index"},
		},
	}
}

// LoadConfig reads a RuleConfig from a YAML file, layered over defaults,
// and compiles it.
func LoadConfig(path string) (*RuleConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Compile(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Compile precompiles regex patterns and builds lookup sets. It must be
// called exactly once before the config is shared; this is the only
// mutation a RuleConfig ever sees.
func (c *RuleConfig) Compile() error {
	if c.compiled {
		return nil
	}

	switch c.FieldPolicy.MissingSourceSeverity {
	case SeverityError, SeverityWarning:
	case "":
		c.FieldPolicy.MissingSourceSeverity = SeverityWarning
	default:
		return fmt.Errorf("invalid missing_source_severity %q", c.FieldPolicy.MissingSourceSeverity)
	}

	c.termPatterns = make([]termPattern, 0, len(c.Lexicon.ForbiddenVerbs)+len(c.Lexicon.ForbiddenTerms))
	for _, term := range append(append([]string{}, c.Lexicon.ForbiddenVerbs...), c.Lexicon.ForbiddenTerms...) {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			return fmt.Errorf("forbidden term %q: %w", term, err)
		}
		c.termPatterns = append(c.termPatterns, termPattern{term: term, re: re})
	}

	c.patternRegexps = make([]*regexp.Regexp, 0, len(c.Lexicon.ForbiddenPatterns))
	for _, pattern := range c.Lexicon.ForbiddenPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("forbidden pattern %q: %w", pattern, err)
		}
		c.patternRegexps = append(c.patternRegexps, re)
	}

	c.nullableTypes = make(map[FieldType]bool, len(c.FieldPolicy.NullableSourceTypes))
	for _, t := range c.FieldPolicy.NullableSourceTypes {
		c.nullableTypes[t] = true
	}

	c.allowedNumbers = make(map[string]bool, len(c.Numbers.AllowedNumbers))
	for _, n := range c.Numbers.AllowedNumbers {
		c.allowedNumbers[n] = true
	}

	c.exclusionRules = make(map[string]bool, len(c.Numbers.Exclusions))
	for _, name := range c.Numbers.Exclusions {
		c.exclusionRules[name] = true
	}

	c.compiled = true
	return nil
}

// TermPatterns returns the precompiled whole-word matchers with their terms.
func (c *RuleConfig) TermPatterns() []struct {
	Term string
	Re   *regexp.Regexp
} {
	out := make([]struct {
		Term string
		Re   *regexp.Regexp
	}, len(c.termPatterns))
	for i, tp := range c.termPatterns {
		out[i].Term = tp.term
		out[i].Re = tp.re
	}
	return out
}

// PatternRegexps returns the precompiled forbidden patterns, paired with
// their source expressions by index into Lexicon.ForbiddenPatterns.
func (c *RuleConfig) PatternRegexps() []*regexp.Regexp {
	return c.patternRegexps
}

// SourceNullable reports whether a field's source may be null by design.
func (c *RuleConfig) SourceNullable(d FieldDescriptor) bool {
	return d.NullableSource || c.nullableTypes[d.Type]
}

// NumberAllowed reports whether a normalized number is on the explicit
// allow list.
func (c *RuleConfig) NumberAllowed(norm string) bool {
	return c.allowedNumbers[norm]
}

// ExclusionEnabled reports whether a named number-exclusion rule is active.
func (c *RuleConfig) ExclusionEnabled(name string) bool {
	return c.exclusionRules[name]
}

// Fingerprint returns a short stable digest of the rule set, used to key
// cached reports so a config change invalidates them.
func (c *RuleConfig) Fingerprint() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "unknown"
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12]
}
