package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// FormatBytes converts bytes to human-readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// IndentJSON pretty prints raw JSON with a two space indent, returning the
// input untouched if it is not valid JSON.
func IndentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // Default fallback width
	}
	return width
}

// WrapText splits text into lines that fit the terminal after indent.
func WrapText(text string, indent int) []string {
	return wrapText(text, getTerminalWidth()-indent-2)
}

func wrapText(text string, maxWidth int) []string {
	if maxWidth <= 10 {
		maxWidth = 80
	}
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(raw) <= maxWidth {
			lines = append(lines, raw)
			continue
		}
		currentLine := ""
		currentWidth := 0
		for _, r := range raw {
			// If adding this rune would exceed max width, flush the line
			if currentWidth+1 > maxWidth {
				lines = append(lines, currentLine)
				currentLine = string(r)
				currentWidth = 1
			} else {
				currentLine += string(r)
				currentWidth++
			}
		}
		if currentLine != "" {
			lines = append(lines, currentLine)
		}
	}
	return lines
}
