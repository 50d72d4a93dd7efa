// Package config holds the linter configuration that has to accompany the processor.
//
// Rewritten documents are full of code the template implies but no human wrote, so
// a number of stylistic rules would fire on every single one. The waiver set turns
// those rules off and sets the parser up for the scripts the processor produces.
package config

import (
	"maps"
	"slices"
)

// Rule severities as the linter spells them.
const (
	Off   = 0
	Warn  = 1
	Error = 2
)

// PluginName is the name the processor is registered under in the linter.
const PluginName = "fruition"

// Parser holds the options passed to the script parser.
type Parser struct {
	// SourceType is either "script" or "module".
	SourceType string `json:"sourceType" toml:"sourceType" yaml:"sourceType"`

	// ECMAVersion is the year of the ECMAScript edition to parse.
	ECMAVersion int `json:"ecmaVersion" toml:"ecmaVersion" yaml:"ecmaVersion"`
}

// Config is the linter configuration applied to every processed document.
type Config struct {
	// Env are the named global environments that are enabled.
	Env map[string]bool `json:"env" toml:"env" yaml:"env"`

	// Rules maps a rule name to its setting, either a bare severity or a list
	// of the severity followed by the rule's options.
	Rules map[string]any `json:"rules" toml:"rules" yaml:"rules"`

	// Plugins are the linter plugins the configuration needs.
	Plugins []string `json:"plugins" toml:"plugins" yaml:"plugins"`

	// ParserOptions configure the script parser.
	ParserOptions Parser `json:"parserOptions" toml:"parserOptions" yaml:"parserOptions"`
}

// waived are the rules switched off for processed documents.
var waived = []string{
	"indent",
	"camelcase",
	"function-paren-newline",
	"arrow-body-style",
	"consistent-return",
	"global-require",
	"no-labels",
	"no-console",
	"no-multi-assign",
	"no-unused-labels",
	"no-restricted-syntax",
	"no-underscore-dangle",
	"no-param-reassign",
	"no-restricted-globals",
	"prefer-destructuring",
	"prefer-spread",
	"prefer-const",
	"prefer-rest-params",
	"prefer-arrow-callback",
	"import/first",
	"import/extensions",
	"import/no-extraneous-dependencies",
	"import/no-dynamic-require",
	"import/no-unresolved",
	"import/no-mutable-exports",
	"import/prefer-default-export",
}

// Default returns the waiver set.
//
// Each call returns a fresh Config, callers are free to modify it.
func Default() Config {
	rules := make(map[string]any, len(waived)+1)
	for _, rule := range waived {
		rules[rule] = Off
	}

	rules["arrow-parens"] = []any{"error", "as-needed"}

	return Config{
		ParserOptions: Parser{
			ECMAVersion: 2019,
			SourceType:  "module",
		},
		Plugins: []string{PluginName},
		Env: map[string]bool{
			"es6":     true,
			"browser": true,
		},
		Rules: rules,
	}
}

// Waived reports whether rule is switched off.
func (c Config) Waived(rule string) bool {
	setting, ok := c.Rules[rule]
	if !ok {
		return false
	}

	switch value := setting.(type) {
	case int:
		return value == Off
	case int64:
		return value == Off
	case float64:
		return value == Off
	case string:
		return value == "off"
	default:
		return false
	}
}

// RuleNames returns the name of every configured rule, sorted.
func (c Config) RuleNames() []string {
	return slices.Sorted(maps.Keys(c.Rules))
}
