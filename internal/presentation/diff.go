package presentation

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOp marks how a diff line changed.
type LineOp byte

const (
	LineEqual  LineOp = ' '
	LineDelete LineOp = '-'
	LineInsert LineOp = '+'
)

// MarshalText renders the op as its prefix character.
func (op LineOp) MarshalText() ([]byte, error) {
	return []byte{byte(op)}, nil
}

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Op   LineOp `json:"op"`
	Text string `json:"text"`
}

var (
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	insertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// DiffLines computes a line-level diff between before and after.
func DiffLines(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()

	// Diff whole lines: map each line to a rune, diff, then map back.
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []DiffLine
	for _, d := range diffs {
		op := LineEqual
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = LineDelete
		case diffmatchpatch.DiffInsert:
			op = LineInsert
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// HasChanges reports whether any line was inserted or deleted.
func HasChanges(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != LineEqual {
			return true
		}
	}
	return false
}

// FormatDiff writes lines prefixed with their op. Unchanged runs longer than
// 2*context lines are collapsed. Changed lines are coloured when styled.
func (f *Formatter) FormatDiff(lines []DiffLine, context int) error {
	if f.json {
		return f.JSON(lines)
	}

	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == LineEqual {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var sb strings.Builder
	skipped := 0
	flush := func() {
		if skipped > 0 {
			fmt.Fprintf(&sb, "@@ %d unchanged lines @@\n", skipped)
			skipped = 0
		}
	}
	for i, l := range lines {
		if !keep[i] {
			skipped++
			continue
		}
		flush()
		text := string(l.Op) + " " + l.Text
		if f.styled {
			switch l.Op {
			case LineDelete:
				text = deleteStyle.Render(text)
			case LineInsert:
				text = insertStyle.Render(text)
			}
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	flush()

	_, err := io.WriteString(f.writer, sb.String())
	return err
}
