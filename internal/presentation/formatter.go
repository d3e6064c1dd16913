package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// MaxCellWidth bounds table cells in display columns.
const MaxCellWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	statusStyles = map[string]lipgloss.Style{
		"satisfied":        lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"missingOptional":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"missingRequired":  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"nonCompliantTags": lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		"incompatible":     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	json   bool
	styled bool
}

// NewFormatter creates a new formatter. With asJSON set every method writes
// indented JSON; otherwise tables are drawn, with borders and colour only when
// styled is set.
func NewFormatter(writer io.Writer, asJSON, styled bool) *Formatter {
	return &Formatter{
		writer: writer,
		json:   asJSON,
		styled: styled,
	}
}

// JSON writes v as indented JSON regardless of mode.
func (f *Formatter) JSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatPage formats one page of assets.
func (f *Formatter) FormatPage(page PageDTO) error {
	if f.json {
		return f.JSON(page)
	}
	if err := f.FormatAssets(page.Assets); err != nil {
		return err
	}
	footer := fmt.Sprintf("%d-%d of %d", min(page.Offset+1, page.Total), page.Offset+len(page.Assets), page.Total)
	if page.NextOffset != nil {
		footer += fmt.Sprintf(" (next: --offset %d)", *page.NextOffset)
	}
	_, err := fmt.Fprintln(f.writer, footer)
	return err
}

// FormatAssets formats a list of assets as a table.
func (f *Formatter) FormatAssets(assets []AssetDTO) error {
	if f.json {
		return f.JSON(assets)
	}
	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{a.ID, a.Name, a.Stage, strings.Join(a.Tags, ", ")})
	}
	return f.table([]string{"ID", "NAME", "STAGE", "TAGS"}, rows, nil)
}

// FormatAsset formats one asset as a field/value table.
func (f *Formatter) FormatAsset(a AssetDTO) error {
	if f.json {
		return f.JSON(a)
	}
	rows := [][]string{
		{"id", a.ID},
		{"name", a.Name},
		{"stage", a.Stage},
		{"source", a.Source},
		{"contents", a.Contents},
		{"tags", strings.Join(a.Tags, ", ")},
	}
	for _, id := range a.Identifiers {
		rows = append(rows, []string{id.Type, id.Value})
	}
	for _, c := range a.Components {
		rows = append(rows, []string{"component", c})
	}
	for _, l := range a.Links {
		rows = append(rows, []string{"link:" + l.TypeID, l.AssetID})
	}
	return f.table([]string{"FIELD", "VALUE"}, rows, nil)
}

// FormatEvaluations formats requirement evaluations, colouring the status
// column when styled.
func (f *Formatter) FormatEvaluations(evals []EvaluationDTO) error {
	if f.json {
		return f.JSON(evals)
	}
	rows := make([][]string, 0, len(evals))
	for _, e := range evals {
		rows = append(rows, []string{e.Requirement, strconv.FormatBool(e.Required), e.Status, e.Message})
	}
	const statusCol = 2
	return f.table([]string{"REQUIREMENT", "REQUIRED", "STATUS", "MESSAGE"}, rows, func(row, col int) (lipgloss.Style, bool) {
		if col != statusCol {
			return lipgloss.Style{}, false
		}
		style, ok := statusStyles[rows[row][statusCol]]
		return style, ok
	})
}

// FormatTags formats tag counts.
func (f *Formatter) FormatTags(tags []TagDTO) error {
	if f.json {
		return f.JSON(tags)
	}
	stored := slices.ContainsFunc(tags, func(t TagDTO) bool { return t.Stored != nil })
	headers := []string{"TAG", "COUNT", "DOMAIN"}
	if stored {
		headers = []string{"TAG", "COUNT", "STORED", "DOMAIN"}
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		if !stored {
			rows = append(rows, []string{t.Tag, strconv.Itoa(t.Count), t.Domain})
			continue
		}
		n := "-"
		if t.Stored != nil {
			n = strconv.Itoa(*t.Stored)
		}
		rows = append(rows, []string{t.Tag, strconv.Itoa(t.Count), n, t.Domain})
	}
	return f.table(headers, rows, nil)
}

// FormatPairs formats two-column rows, e.g. relationship types or domains.
func (f *Formatter) FormatPairs(headers [2]string, pairs [][2]string) error {
	if f.json {
		out := make([]map[string]string, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, map[string]string{
				strings.ToLower(headers[0]): p[0],
				strings.ToLower(headers[1]): p[1],
			})
		}
		return f.JSON(out)
	}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p[0], p[1]})
	}
	return f.table(headers[:], rows, nil)
}

type cellStyler func(row, col int) (lipgloss.Style, bool)

func (f *Formatter) table(headers []string, rows [][]string, styler cellStyler) error {
	for _, row := range rows {
		for i, cell := range row {
			row[i] = Truncate(cell, MaxCellWidth)
		}
	}

	if !f.styled {
		var sb strings.Builder
		sb.WriteString(strings.Join(headers, "\t"))
		sb.WriteByte('\n')
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteByte('\n')
		}
		_, err := io.WriteString(f.writer, sb.String())
		return err
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if styler != nil {
				if style, ok := styler(row, col); ok {
					return style.Padding(0, 1)
				}
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(f.writer, t.Render())
	return err
}

// Truncate shortens s to width display columns, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
