package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Enabled(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{
			name:     "auto-ulid defaults on",
			registry: New(nil),
			flag:     FlagAutoULID,
			expected: true,
		},
		{
			name:     "result-cache defaults on",
			registry: New(map[string]bool{}),
			flag:     FlagResultCache,
			expected: true,
		},
		{
			name:     "override disables a default",
			registry: New(map[string]bool{FlagAutoULID: false}),
			flag:     FlagAutoULID,
			expected: false,
		},
		{
			name:     "extra flag set to true",
			registry: New(map[string]bool{"feature-a": true}),
			flag:     "feature-a",
			expected: true,
		},
		{
			name:     "unknown flag returns false",
			registry: New(nil),
			flag:     "unknown-flag",
			expected: false,
		},
		{
			name:     "nil registry returns false",
			registry: nil,
			flag:     FlagAutoULID,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.Enabled(tt.flag))
		})
	}
}

func TestRegistry_All(t *testing.T) {
	require.Equal(t, Defaults(), New(nil).All())
	require.Equal(t, map[string]bool{}, (*Registry)(nil).All())

	all := New(map[string]bool{"x": true, FlagResultCache: false}).All()
	require.Equal(t, map[string]bool{FlagAutoULID: true, FlagResultCache: false, "x": true}, all)
}

func TestRegistry_All_ReturnsCopy(t *testing.T) {
	r := New(nil)

	copied := r.All()
	copied[FlagAutoULID] = false
	copied["new-flag"] = true

	require.True(t, r.Enabled(FlagAutoULID))
	require.False(t, r.Enabled("new-flag"))
}

func TestNew_DoesNotAliasOverrides(t *testing.T) {
	overrides := map[string]bool{FlagAutoULID: false}
	r := New(overrides)

	overrides[FlagAutoULID] = true
	require.False(t, r.Enabled(FlagAutoULID))
}
