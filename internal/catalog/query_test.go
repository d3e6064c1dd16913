package catalog

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/hoard/internal/inventory"
)

func names(assets []inventory.Asset) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Name)
	}
	sort.Strings(out)
	return out
}

func TestQuery(t *testing.T) {
	c := newWorkstation(t)

	tests := []struct {
		name string
		tags []string
		want []string
	}{
		{"single tag", []string{"usb"}, []string{"Computer", "Keyboard"}},
		{"intersection", []string{"usb", "type:keyboard"}, []string{"Keyboard"}},
		{"disjoint tags", []string{"type:keyboard", "type:display"}, []string{}},
		{"unknown tag", []string{"nope"}, []string{}},
		{"whitespace is trimmed", []string{" usb "}, []string{"Computer", "Keyboard"}},
		{"no tags returns all", nil, []string{"Computer", "Drawer", "Keyboard", "Monitor", "RAM", "SSD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, names(c.Query(tt.tags...)))
		})
	}
}

func TestQuery_OrderedByID(t *testing.T) {
	c := newWorkstation(t)

	got := c.Query()
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].ID.String(), got[i].ID.String())
	}
}

func TestQueryByStage(t *testing.T) {
	c := newWorkstation(t)

	require.Equal(t, []string{"Monitor"}, names(c.QueryByStage(inventory.StageLent)))
	require.Equal(t, []string{"Drawer"}, names(c.QueryByStage(inventory.StageWishlist)))
	require.Empty(t, c.QueryByStage(inventory.StageSold))
}

func TestQueryBySource(t *testing.T) {
	c := newWorkstation(t)

	require.Equal(t, []string{"Drawer", "Keyboard"}, names(c.QueryBySource("ebay")))
	require.Empty(t, c.QueryBySource("garage sale"))
}

func TestQueryFunc(t *testing.T) {
	c := newWorkstation(t)

	got := c.QueryFunc(func(a inventory.Asset) bool { return len(a.Components) > 0 })
	require.Equal(t, []string{"Computer"}, names(got))
}

func TestSearch(t *testing.T) {
	c := newWorkstation(t)

	tests := []struct {
		name string
		cr   Criteria
		want []string
	}{
		{"tags and stage", Criteria{Tags: []string{"usb"}, Stage: inventory.StageOwned}, []string{"Computer", "Keyboard"}},
		{"tags and source", Criteria{Tags: []string{"usb"}, Source: "ebay"}, []string{"Keyboard"}},
		{"stage and source", Criteria{Stage: inventory.StageWishlist, Source: "ebay"}, []string{"Drawer"}},
		{"predicate narrows", Criteria{Tags: []string{"usb"}, Match: func(a inventory.Asset) bool { return a.Name == "Computer" }}, []string{"Computer"}},
		{"no match", Criteria{Stage: inventory.StageLent, Source: "ebay"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, names(c.Search(tt.cr)))
		})
	}
}

func TestCriteria_IsEmpty(t *testing.T) {
	require.True(t, Criteria{}.IsEmpty())
	require.True(t, Criteria{Tags: []string{" ", ""}}.IsEmpty())
	require.False(t, Criteria{Tags: []string{"x"}}.IsEmpty())
	require.False(t, Criteria{Stage: inventory.StageOwned}.IsEmpty())
	require.False(t, Criteria{Match: func(inventory.Asset) bool { return true }}.IsEmpty())
}

func TestQuery_ReturnsCopies(t *testing.T) {
	c := New(inventory.NewDocument())
	id := uuid.New()
	c.Upsert(inventory.Asset{ID: id, Tags: []string{"a", "b"}})

	got := c.Query("a")
	got[0].Tags[0] = "changed"

	stored, ok := c.Get(id)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, stored.Tags)
}
