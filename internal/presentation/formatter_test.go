package presentation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/catalog"
	"github.com/zjrosen/hoard/internal/inventory"
	"github.com/zjrosen/hoard/internal/testutil"
)

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", Truncate("short", 10))
	require.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	// Wide runes count two columns each.
	require.Equal(t, "日本…", Truncate("日本語です", 5))
}

func TestFromAsset_NilTagsBecomeEmpty(t *testing.T) {
	dto := FromAsset(inventory.Asset{Name: "Bare"})
	require.NotNil(t, dto.Tags)
	require.Empty(t, dto.Tags)
}

func TestFormatPage_JSON(t *testing.T) {
	assets := []inventory.Asset{
		{ID: testutil.ID("one"), Name: "One", Tags: []string{"a"}},
		{ID: testutil.ID("two"), Name: "Two", Tags: []string{"b"}},
		{ID: testutil.ID("three"), Name: "Three"},
	}
	page := catalog.Paginate(assets, 0, 2)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, true, false).FormatPage(FromPage(page)))

	var got PageDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Assets, 2)
	require.Equal(t, 3, got.Total)
	require.NotNil(t, got.NextOffset)
	require.Equal(t, 2, *got.NextOffset)
}

func TestFormatPage_PlainLastPage(t *testing.T) {
	assets := []inventory.Asset{{ID: testutil.ID("only"), Name: "Only", Tags: []string{"x", "y"}}}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false, false).FormatPage(FromPage(catalog.Paginate(assets, 0, 10))))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "ID\tNAME\tSTAGE\tTAGS", lines[0])
	require.Contains(t, lines[1], "Only")
	require.Contains(t, lines[1], "x, y")
	require.Equal(t, "1-1 of 1", lines[2])
}

func TestFormatEvaluations_Styled(t *testing.T) {
	evals := []inventory.RelationshipEvaluation{
		{
			Requirement: inventory.RelationshipRequirement{Name: "Power", TypeID: "power", Required: true},
			Status:      inventory.StatusMissingRequired,
			Message:     "missing required Power",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false, true).FormatEvaluations(FromEvaluations(evals)))
	out := buf.String()
	require.Contains(t, out, "REQUIREMENT")
	require.Contains(t, out, "missingRequired")
	require.Contains(t, out, "╭")
}

func TestFromEvaluations(t *testing.T) {
	evals := []inventory.RelationshipEvaluation{
		{
			Requirement: inventory.RelationshipRequirement{TypeID: "host"},
			Status:      inventory.StatusMissingOptional,
		},
	}
	got := FromEvaluations(evals)
	require.Len(t, got, 1)
	require.Equal(t, "host", got[0].Requirement)
	require.True(t, got[0].OK)

	require.NotNil(t, FromEvaluations(nil))
}

func TestFormatPairs_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := NewFormatter(&buf, true, false).FormatPairs([2]string{"ID", "NAME"}, [][2]string{{"host", "Host"}})
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, []map[string]string{{"id": "host", "name": "Host"}}, got)
}

func TestFormatTags_StoredColumnOnlyWhenKnown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf, false, false).FormatTags([]TagDTO{{Tag: "usb", Count: 2, Domain: "general"}}))
	require.Equal(t, "TAG\tCOUNT\tDOMAIN\nusb\t2\tgeneral\n", buf.String())

	buf.Reset()
	one := 1
	require.NoError(t, NewFormatter(&buf, false, false).FormatTags([]TagDTO{
		{Tag: "usb", Count: 2, Stored: &one, Domain: "general"},
		{Tag: "new", Count: 1, Domain: "general"},
	}))
	require.Equal(t, "TAG\tCOUNT\tSTORED\tDOMAIN\nusb\t2\t1\tgeneral\nnew\t1\t-\tgeneral\n", buf.String())
}
