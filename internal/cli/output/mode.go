// Package output renders command results for terminals, scripts and agents.
//
// Output adapts to environment:
//   - Terminal: styled text and tables
//   - Piped/Scripted: Markdown
//   - --output json: machine-readable JSON
package output

import "strings"

// OutputMode selects how a command renders its result.
type OutputMode string //nolint:revive // output.OutputMode reads better at call sites than output.Mode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode converts a configured output string to an OutputMode.
// Unknown or empty values mean auto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}
