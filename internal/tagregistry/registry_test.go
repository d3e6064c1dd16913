package tagregistry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegister_CaseInsensitive(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("DSK", "RetroBoxFS", nil))

	require.True(t, r.IsRegistered("dsk", "retroboxfs"))
	require.True(t, r.IsRegistered(" Dsk ", "RETROBOXFS"))
	require.Equal(t, []string{"dsk"}, r.TagsFor("RetroBoxFS"))

	domain, ok := r.DomainFor("DsK")
	require.True(t, ok)
	require.Equal(t, "retroboxfs", domain)
}

func TestRegister_Errors(t *testing.T) {
	r := New()
	require.ErrorIs(t, r.Register("  ", "fs", nil), ErrEmptyTag)
	require.ErrorIs(t, r.Register("dsk", "", nil), ErrEmptyDomain)
	require.Empty(t, r.Domains())
}

func TestExecute(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("dsk", "fs", func(_ context.Context, tag string) (any, error) {
		return "mounted " + tag, nil
	}))

	got, err := r.Execute(context.Background(), "DSK", "FS")
	require.NoError(t, err)
	require.Equal(t, "mounted dsk", got)
}

func TestExecute_Absent(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("plain", "fs", nil))

	tests := []struct {
		name   string
		tag    string
		domain string
	}{
		{"unregistered tag", "missing", "fs"},
		{"unknown domain", "plain", "other"},
		{"registered without handler", "plain", "fs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Execute(context.Background(), tt.tag, tt.domain)
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestExecute_PropagatesHandlerError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	require.NoError(t, r.Register("dsk", "fs", func(context.Context, string) (any, error) {
		return nil, boom
	}))

	_, err := r.Execute(context.Background(), "dsk", "fs")
	require.Same(t, boom, err)
}

func TestExecute_HandlerMayUseRegistry(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("dsk", "fs", func(_ context.Context, tag string) (any, error) {
		domain, _ := r.DomainFor(tag)
		return domain, nil
	}))

	got, err := r.Execute(context.Background(), "dsk", "fs")
	require.NoError(t, err)
	require.Equal(t, "fs", got)
}

func TestRegister_LastDomainWins(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("dsk", "fs", nil))
	require.NoError(t, r.Register("dsk", "emulator", nil))

	domain, ok := r.DomainFor("dsk")
	require.True(t, ok)
	require.Equal(t, "emulator", domain)

	// The earlier domain keeps the tag in its own set.
	require.True(t, r.IsRegistered("dsk", "fs"))
	require.True(t, r.IsRegistered("dsk", "emulator"))
	require.Equal(t, []string{"emulator", "fs"}, r.Domains())
}

func TestRegister_NilHandlerKeepsExisting(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("dsk", "fs", func(context.Context, string) (any, error) { return 1, nil }))
	require.NoError(t, r.Register("dsk", "fs", nil))

	got, err := r.Execute(context.Background(), "dsk", "fs")
	require.NoError(t, err)
	require.Equal(t, 1, got)
}

func TestUnregister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("dsk", "fs", func(context.Context, string) (any, error) { return 1, nil }))
	require.NoError(t, r.Register("dsk", "emulator", nil))

	require.True(t, r.Unregister("DSK", "fs"))
	require.False(t, r.IsRegistered("dsk", "fs"))

	// The global mapping belonged to emulator and is kept.
	domain, ok := r.DomainFor("dsk")
	require.True(t, ok)
	require.Equal(t, "emulator", domain)

	got, err := r.Execute(context.Background(), "dsk", "fs")
	require.NoError(t, err)
	require.Nil(t, got)

	require.False(t, r.Unregister("dsk", "fs"))
	require.True(t, r.Unregister("dsk", "emulator"))
	_, ok = r.DomainFor("dsk")
	require.False(t, ok)
	require.Empty(t, r.Domains())
}

func TestTagsFor_Unknown(t *testing.T) {
	require.Empty(t, New().TagsFor("nowhere"))
}
