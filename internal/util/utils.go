package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetLineAndColumn converts a byte offset into a 1-based line and column.
func GetLineAndColumn(src string, pos int) (line int, column int) {
	line = 1
	column = 1
	for i, char := range src {
		if i >= pos {
			break
		}
		if char == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}

// GetContextLines renders the line holding pos with a caret under the
// offending column, followed by note.
func GetContextLines(src string, pos int, note string) string {
	var result bytes.Buffer

	errorLine, errorCol := GetLineAndColumn(src, pos)
	lines := strings.Split(src, "\n")
	lineContent := ""
	if errorLine <= len(lines) {
		lineContent = lines[errorLine-1]
	}
	prefix := lineContent
	if errorCol-1 <= len(lineContent) {
		prefix = lineContent[:errorCol-1]
	}

	margin := fmt.Sprintf("  >  %3d | ", errorLine)
	result.WriteString(fmt.Sprintf("%s%s\n", margin, lineContent))
	result.WriteString(fmt.Sprintf("%s^ %s",
		replaceVisibleWithSpaces(margin+prefix), note))

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
