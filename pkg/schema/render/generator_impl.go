package render

import (
	"bytes"
	"strings"
)

const indentation = "  "

type sourceGenerator struct {
	buf              bytes.Buffer // The buffer for the new source code.
	indentationLevel int          // The current indentation level.
	hasNewline       bool         // Whether there is a newline at the end of the buffer.
	hasBlankline     bool         // Whether there is a blank line at the end of the buffer.
}

func newSourceGenerator() *sourceGenerator {
	return &sourceGenerator{hasNewline: true, hasBlankline: true}
}

// ensureBlankLine ensures that there is a blank line at the tail of the buffer. If not,
// a new line is added.
func (sg *sourceGenerator) ensureBlankLine() {
	if !sg.hasBlankline {
		sg.appendLine()
	}
}

// indent increases the current indentation.
func (sg *sourceGenerator) indent() {
	sg.indentationLevel++
}

// dedent decreases the current indentation.
func (sg *sourceGenerator) dedent() {
	sg.indentationLevel--
}

// append adds the given value to the buffer, indenting as necessary.
func (sg *sourceGenerator) append(value string) {
	for _, currentRune := range value {
		if currentRune == '\n' {
			if sg.hasNewline {
				sg.hasBlankline = true
			}

			sg.buf.WriteRune('\n')
			sg.hasNewline = true
			continue
		}

		sg.hasBlankline = false

		if sg.hasNewline {
			sg.buf.WriteString(strings.Repeat(indentation, sg.indentationLevel))
			sg.hasNewline = false
		}

		sg.buf.WriteRune(currentRune)
	}
}

// appendLine adds a newline.
func (sg *sourceGenerator) appendLine() {
	sg.append("\n")
}

// appendRow adds one line made of aligned columns. Trailing empty columns
// produce no trailing whitespace.
func (sg *sourceGenerator) appendRow(columns []string, widths []int) {
	last := len(columns) - 1
	for last > 0 && columns[last] == "" {
		last--
	}

	var line strings.Builder
	for i := 0; i <= last; i++ {
		line.WriteString(columns[i])
		if i < last {
			line.WriteString(strings.Repeat(" ", widths[i]-len(columns[i])+1))
		}
	}
	sg.append(line.String())
	sg.appendLine()
}

// appendDocumentation emits each documentation line as a /// comment.
func (sg *sourceGenerator) appendDocumentation(doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(doc, "\n") {
		if line == "" {
			sg.append("///")
		} else {
			sg.append("/// " + line)
		}
		sg.appendLine()
	}
}

// columnWidths returns the widest entry of each column across rows.
func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, col := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if len(col) > widths[i] {
				widths[i] = len(col)
			}
		}
	}
	return widths
}
