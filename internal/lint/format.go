package lint

import (
	"strings"
)

const indent = "    "

// Format strips trailing spaces and tabs from every line and replaces each
// leading tab with four spaces. Line endings are preserved.
func Format(src []byte) []byte {
	lines := strings.Split(string(src), "\n")
	for i, line := range lines {
		cr := strings.HasSuffix(line, "\r")
		line = strings.TrimSuffix(line, "\r")
		line = strings.TrimRight(line, " \t")

		body := strings.TrimLeft(line, "\t")
		if tabs := len(line) - len(body); tabs > 0 {
			line = strings.Repeat(indent, tabs) + body
		}

		if cr {
			line += "\r"
		}
		lines[i] = line
	}
	return []byte(strings.Join(lines, "\n"))
}

// NeedsFormat reports whether Format would change src.
func NeedsFormat(src []byte) bool {
	return string(Format(src)) != string(src)
}
