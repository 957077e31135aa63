package lint

import (
	"cmp"
	"slices"
	"strings"
)

// FixMissingCatch appends a catch block that prints the error after every
// try block in src. It only acts when src has no catch at all, which is
// when Check reports CodeMissingCatch. Try blocks whose braces never close
// are left alone. It returns the new source and the number of blocks fixed.
func FixMissingCatch(src []byte) ([]byte, int) {
	text := string(src)
	if strings.Contains(text, "catch {") {
		return src, 0
	}
	nl := "\n"
	if strings.Contains(text, "\r\n") {
		nl = "\r\n"
	}

	type insertion struct {
		at   int
		text string
	}
	var inserts []insertion
	for off := 0; ; {
		i := strings.Index(text[off:], "try {")
		if i < 0 {
			break
		}
		open := off + i + len("try ")
		off = open + 1
		end := closingBrace(text, open)
		if end < 0 {
			continue
		}
		ind := lineIndent(text, end)
		inserts = append(inserts, insertion{
			at:   end + 1,
			text: " catch {|err|" + nl + ind + indent + `print $"Error: ($err.msg)"` + nl + ind + "}",
		})
	}
	if len(inserts) == 0 {
		return src, 0
	}

	// Apply back to front so earlier offsets stay valid.
	slices.SortFunc(inserts, func(a, b insertion) int { return cmp.Compare(b.at, a.at) })
	for _, ins := range inserts {
		text = text[:ins.at] + ins.text + text[ins.at:]
	}
	return []byte(text), len(inserts)
}

// closingBrace returns the offset of the brace matching the one at open, or
// -1 if it never closes.
func closingBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lineIndent returns the leading spaces and tabs of the line holding pos.
func lineIndent(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	line := text[start:pos]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
