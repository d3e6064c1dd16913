package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate_WalksAllPages(t *testing.T) {
	items := seq(120)

	first := Paginate(items, 0, 50)
	require.Len(t, first.Items, 50)
	require.Equal(t, 120, first.Total)
	require.NotNil(t, first.NextOffset)
	require.Equal(t, 50, *first.NextOffset)

	second := Paginate(items, *first.NextOffset, 50)
	require.Len(t, second.Items, 50)
	require.Equal(t, 50, second.Items[0])
	require.Equal(t, 100, *second.NextOffset)

	third := Paginate(items, *second.NextOffset, 50)
	require.Len(t, third.Items, 20)
	require.Nil(t, third.NextOffset)
	require.False(t, third.HasMore())
	require.Equal(t, 119, third.Items[19])
}

func TestPaginate_EdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		offset     int
		limit      int
		wantLen    int
		wantOffset int
		wantLimit  int
		wantNext   *int
	}{
		{"empty input", 0, 0, 10, 0, 0, 10, nil},
		{"offset past end", 5, 10, 10, 0, 10, 10, nil},
		{"negative offset clamps", 5, -3, 2, 2, 0, 2, intPtr(2)},
		{"zero limit clamps to one", 5, 0, 0, 1, 0, 1, intPtr(1)},
		{"exact fit", 10, 0, 10, 10, 0, 10, nil},
		{"max limit", 3, 1, math.MaxInt, 2, 1, math.MaxInt, nil},
		{"max offset", 3, math.MaxInt, 2, 0, math.MaxInt, 2, nil},
		{"max offset and limit", 3, math.MaxInt, math.MaxInt, 0, math.MaxInt, math.MaxInt, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(seq(tt.n), tt.offset, tt.limit)
			require.Len(t, page.Items, tt.wantLen)
			require.Equal(t, tt.wantOffset, page.Offset)
			require.Equal(t, tt.wantLimit, page.Limit)
			require.Equal(t, tt.n, page.Total)
			require.Equal(t, tt.wantNext, page.NextOffset)
		})
	}
}

func TestPaginate_AppendDoesNotClobberSource(t *testing.T) {
	items := seq(10)
	page := Paginate(items, 0, 3)

	_ = append(page.Items, 99)
	require.Equal(t, 3, items[3])
}

func intPtr(v int) *int { return &v }
