// Package lint reports common problems in Nushell automation scripts and
// normalizes their whitespace. Checks are line-based; nothing here parses
// the language.
package lint

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic codes.
const (
	CodeTrailingWhitespace = "nix-mox-trailing-whitespace"
	CodeSecurity           = "nix-mox-security"
	CodeMissingCatch       = "nix-mox-missing-error-handling"
	CodeHardcodedPath      = "nix-mox-hardcoded-path"
	CodeTodo               = "nix-mox-todo"
	CodeFixme              = "nix-mox-fixme"
)

// Diagnostic is one finding. Line is 1-based; Column is the 0-based byte
// offset where the finding starts.
type Diagnostic struct {
	Line     int
	Column   int
	Severity Severity
	Code     string
	Message  string
}

// Format renders d in the file:line:col form editors understand.
func (d Diagnostic) Format(file string) string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]", file, d.Line, d.Column+1, d.Severity, d.Message, d.Code)
}

var (
	todoPattern  = regexp.MustCompile(`(?i)#\s*TODO`)
	fixmePattern = regexp.MustCompile(`(?i)#\s*FIXME`)
)

// Check returns every diagnostic for src in line order.
func Check(src []byte) []Diagnostic {
	text := string(src)
	hasCatch := strings.Contains(text, "catch {")

	var diags []Diagnostic
	for i, line := range strings.Split(text, "\n") {
		n := i + 1
		line = strings.TrimSuffix(line, "\r")

		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			diags = append(diags, Diagnostic{
				Line:     n,
				Column:   len(strings.TrimRight(line, " \t")),
				Severity: SeverityInfo,
				Code:     CodeTrailingWhitespace,
				Message:  "Trailing whitespace detected",
			})
		}

		if strings.Contains(line, "rm -rf /") || strings.Contains(line, "sudo rm -rf") {
			diags = append(diags, Diagnostic{
				Line:     n,
				Severity: SeverityError,
				Code:     CodeSecurity,
				Message:  "Dangerous command detected: this could delete system files",
			})
		}

		if strings.Contains(line, "try {") && !hasCatch {
			diags = append(diags, Diagnostic{
				Line:     n,
				Severity: SeverityWarning,
				Code:     CodeMissingCatch,
				Message:  "Try block without catch - consider adding error handling",
			})
		}

		if strings.Contains(line, "/home/") || strings.Contains(line, "/root/") {
			diags = append(diags, Diagnostic{
				Line:     n,
				Severity: SeverityWarning,
				Code:     CodeHardcodedPath,
				Message:  "Hardcoded path detected - consider using environment variables",
			})
		}

		if loc := todoPattern.FindStringIndex(line); loc != nil {
			diags = append(diags, Diagnostic{
				Line:     n,
				Column:   loc[0],
				Severity: SeverityInfo,
				Code:     CodeTodo,
				Message:  "TODO comment found",
			})
		}

		if loc := fixmePattern.FindStringIndex(line); loc != nil {
			diags = append(diags, Diagnostic{
				Line:     n,
				Column:   loc[0],
				Severity: SeverityWarning,
				Code:     CodeFixme,
				Message:  "FIXME comment found - needs attention",
			})
		}
	}
	return diags
}

// MaxSeverity returns the highest severity in diags and false if diags is
// empty.
func MaxSeverity(diags []Diagnostic) (Severity, bool) {
	if len(diags) == 0 {
		return SeverityInfo, false
	}
	highest := SeverityInfo
	for _, d := range diags {
		if d.Severity > highest {
			highest = d.Severity
		}
	}
	return highest, true
}
