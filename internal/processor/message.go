package processor

import (
	"fmt"
	"strings"
)

// Severity levels as reported by the linter.
const (
	SeverityOff     = 0
	SeverityWarning = 1
	SeverityError   = 2
)

// Message is a single diagnostic reported by the linter against a virtual file.
//
// The field names follow the linter's own JSON output so messages can be read straight
// from a report and written back out again.
type Message struct {
	RuleID    string `json:"ruleId"              toml:"ruleId"              yaml:"ruleId"`
	Message   string `json:"message"             toml:"message"             yaml:"message"`
	Source    string `json:"source,omitempty"    toml:"source,omitempty"    yaml:"source,omitempty"`
	Severity  int    `json:"severity"            toml:"severity"            yaml:"severity"`
	Line      int    `json:"line"                toml:"line"                yaml:"line"`
	Column    int    `json:"column"              toml:"column"              yaml:"column"`
	EndLine   int    `json:"endLine,omitempty"   toml:"endLine,omitempty"   yaml:"endLine,omitempty"`
	EndColumn int    `json:"endColumn,omitempty" toml:"endColumn,omitempty" yaml:"endColumn,omitempty"`
	Fatal     bool   `json:"fatal,omitempty"     toml:"fatal,omitempty"     yaml:"fatal,omitempty"`
}

// String implements [fmt.Stringer] for a [Message], in the usual
// 'line:column severity message rule' layout of linter output.
func (m Message) String() string {
	severity := "warning"
	if m.Severity == SeverityError || m.Fatal {
		severity = "error"
	}

	s := fmt.Sprintf("%d:%d %s %s", m.Line, m.Column, severity, m.Message)
	if m.RuleID != "" {
		s += " " + m.RuleID
	}

	return s
}

// undefinedRule is the linter rule reporting use of an undeclared identifier.
const undefinedRule = "no-undef"

// Undefined returns the identifier named by a no-undef message like
// "'count' is not defined.", ok is false for any other message.
func (m Message) Undefined() (name string, ok bool) {
	if m.RuleID != undefinedRule {
		return "", false
	}

	rest, found := strings.CutPrefix(m.Message, "'")
	if !found {
		return "", false
	}

	name, found = strings.CutSuffix(rest, "' is not defined.")
	if !found || name == "" || strings.ContainsAny(name, "' ") {
		return "", false
	}

	return name, true
}
