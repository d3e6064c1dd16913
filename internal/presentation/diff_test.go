package presentation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffLines(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nB\nc\nd\n"

	got := DiffLines(before, after)
	require.Equal(t, []DiffLine{
		{Op: LineEqual, Text: "a"},
		{Op: LineDelete, Text: "b"},
		{Op: LineInsert, Text: "B"},
		{Op: LineEqual, Text: "c"},
		{Op: LineInsert, Text: "d"},
	}, got)
	require.True(t, HasChanges(got))
}

func TestDiffLines_Identical(t *testing.T) {
	got := DiffLines("same\n", "same\n")
	require.Equal(t, []DiffLine{{Op: LineEqual, Text: "same"}}, got)
	require.False(t, HasChanges(got))
}

func TestFormatDiff_CollapsesUnchangedRuns(t *testing.T) {
	lines := []DiffLine{
		{Op: LineEqual, Text: "1"},
		{Op: LineEqual, Text: "2"},
		{Op: LineEqual, Text: "3"},
		{Op: LineEqual, Text: "4"},
		{Op: LineDelete, Text: "old"},
		{Op: LineInsert, Text: "new"},
		{Op: LineEqual, Text: "5"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false, false).FormatDiff(lines, 1))
	require.Equal(t, "@@ 3 unchanged lines @@\n  4\n- old\n+ new\n  5\n", buf.String())
}

func TestFormatDiff_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, true, false).FormatDiff([]DiffLine{{Op: LineInsert, Text: "x"}}, 3))
	require.JSONEq(t, `[{"op":"+","text":"x"}]`, buf.String())
}
