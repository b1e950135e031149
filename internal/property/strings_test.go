package property

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

func newTags() (*StringList, *schema.Definition) {
	list := NewStringList("Tags", "Tag")
	def := schema.NewDefinition("Tags", "test:Tags",
		schema.CanSet|schema.CanUpdate|schema.CanDelete, schema.V1)
	return list, def
}

func TestStringListWholeRule(t *testing.T) {
	list, def := newTags()
	list.Add("red")
	list.Add("blue")

	ops, err := list.UpdateOps(def)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpSet, ops[0].Kind)

	require.True(t, list.Remove("red"))
	require.True(t, list.Remove("blue"))
	ops, err = list.UpdateOps(def)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpDelete, ops[0].Kind)
}

func TestStringListChangeSignal(t *testing.T) {
	list, _ := newTags()
	var fired int
	list.Subscribe(func() { fired++ })

	list.Add("red")
	require.True(t, list.IsDirty())
	require.Equal(t, 1, fired)

	require.False(t, list.Remove("missing"))
	require.Equal(t, 1, fired)

	list.ClearChangeLog()
	require.False(t, list.IsDirty())
}

func TestStringListRoundTrip(t *testing.T) {
	list, _ := newTags()
	list.Add("red")
	list.Add("blue")

	var sb strings.Builder
	w := wire.NewWriter(&sb)
	require.NoError(t, list.WriteXML(w))
	require.NoError(t, w.Flush())

	back, _ := newTags()
	r := wire.NewReader(strings.NewReader(sb.String()))
	require.NoError(t, r.Next())
	require.NoError(t, back.ReadXML(r))

	require.Equal(t, []string{"red", "blue"}, back.Values())
	require.False(t, back.IsDirty())
}

func TestStringListWriteOmitsEmpty(t *testing.T) {
	list, _ := newTags()
	var sb strings.Builder
	w := wire.NewWriter(&sb)
	require.NoError(t, list.WriteXML(w))
	require.NoError(t, w.Flush())
	require.Empty(t, sb.String())
}
