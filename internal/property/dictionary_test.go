package property

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// slot is a minimal keyed entry.
type slot struct {
	Complex
	key   string
	value string
}

func newSlot() *slot { return &slot{Complex: NewComplex("Entry")} }

func makeSlot(key, value string) *slot {
	s := newSlot()
	s.key = key
	s.value = value
	return s
}

func (s *slot) EntryKey() string   { return s.key }
func (s *slot) FieldIndex() string { return s.key }

func (s *slot) SetValue(v string) {
	s.value = v
	s.Changed()
}

func (s *slot) ReadXML(r wire.Reader) error {
	s.key = r.Attr("Key")
	v, err := r.ReadString()
	if err != nil {
		return err
	}
	s.value = v
	return nil
}

func (s *slot) WriteXML(w wire.Writer) error {
	if err := w.StartElement(s.WireName()); err != nil {
		return err
	}
	if err := w.Attr("Key", s.key); err != nil {
		return err
	}
	if err := w.Text(s.value); err != nil {
		return err
	}
	return w.EndElement()
}

func newSlots() (*Dictionary[string, *slot], *schema.Definition) {
	dict := NewDictionary[string, *slot]("Slots", newSlot)
	def := schema.NewDefinition("Slots", "test:Slots",
		schema.CanSet|schema.CanUpdate|schema.CanDelete, schema.V1,
		schema.WithDiffPolicy(schema.DiffPerItem))
	return dict, def
}

func TestDictionaryPerKeyDiff(t *testing.T) {
	// Fresh dictionary: add k1, add k2, remove k1. Exactly one set for
	// k2, zero deletes.
	dict, def := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.AddOrReplace(makeSlot("k2", "v2"))
	require.True(t, dict.Remove("k1"))

	ops, err := dict.UpdateOps(def)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpSet, ops[0].Kind)
	require.Equal(t, "k2", ops[0].Path.Index)
	require.Equal(t, "test:Slots", ops[0].Path.URI)
}

func TestDictionaryReplaceMarksModified(t *testing.T) {
	dict, _ := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.ClearChangeLog()

	dict.AddOrReplace(makeSlot("k1", "v2"))
	require.Equal(t, []string{"k1"}, dict.ModifiedKeys())
	require.Empty(t, dict.AddedKeys())

	got, ok := dict.Get("k1")
	require.True(t, ok)
	require.Equal(t, "v2", got.value)
}

func TestDictionaryReplaceAddedStaysAdded(t *testing.T) {
	dict, _ := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.AddOrReplace(makeSlot("k1", "v2"))

	require.Equal(t, []string{"k1"}, dict.AddedKeys())
	require.Empty(t, dict.ModifiedKeys())
}

func TestDictionaryRemoveExistingKey(t *testing.T) {
	dict, def := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.ClearChangeLog()

	require.True(t, dict.Remove("k1"))
	require.False(t, dict.Remove("k1"))

	ops, err := dict.UpdateOps(def)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpDelete, ops[0].Kind)
	require.Equal(t, "k1", ops[0].Path.Index)
}

func TestDictionaryRemovedKeyReAddsFresh(t *testing.T) {
	dict, _ := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.ClearChangeLog()
	require.True(t, dict.Remove("k1"))

	// Removed never transitions to Modified; re-adding is a fresh key.
	dict.AddOrReplace(makeSlot("k1", "v2"))
	require.Equal(t, []string{"k1"}, dict.AddedKeys())
	require.Empty(t, dict.RemovedKeys())
	require.Empty(t, dict.ModifiedKeys())
}

func TestDictionaryReplacedEntryStopsNotifying(t *testing.T) {
	dict, _ := newSlots()
	old := makeSlot("k1", "v1")
	dict.AddOrReplace(old)
	dict.ClearChangeLog()
	dict.AddOrReplace(makeSlot("k1", "v2"))
	dict.ClearChangeLog()

	// The replaced entry is a detached subtree.
	old.SetValue("phantom")
	require.Empty(t, dict.ModifiedKeys())
}

func TestDictionaryEntryEditMarksModified(t *testing.T) {
	dict, _ := newSlots()
	e := makeSlot("k1", "v1")
	dict.AddOrReplace(e)
	dict.ClearChangeLog()

	var fired int
	dict.Subscribe(func() { fired++ })
	e.SetValue("v2")

	require.Equal(t, 1, fired)
	require.Equal(t, []string{"k1"}, dict.ModifiedKeys())
}

func TestDictionaryReadXML(t *testing.T) {
	dict, _ := newSlots()
	r := wire.NewReader(strings.NewReader(
		`<Slots><Entry Key="k1">v1</Entry><Other>skip</Other><Entry Key="k2">v2</Entry></Slots>`))
	require.NoError(t, r.Next())
	require.NoError(t, dict.ReadXML(r))

	require.Equal(t, 2, dict.Len())
	require.Equal(t, []string{"k1", "k2"}, dict.Keys())
	require.False(t, dict.IsDirty())

	e, ok := dict.Get("k2")
	require.True(t, ok)
	require.Equal(t, "v2", e.value)
}

func TestDictionaryWriteXML(t *testing.T) {
	dict, _ := newSlots()
	dict.AddOrReplace(makeSlot("k1", "v1"))
	dict.AddOrReplace(makeSlot("k2", "v2"))

	var sb strings.Builder
	w := wire.NewWriter(&sb)
	require.NoError(t, dict.WriteXML(w))
	require.NoError(t, w.Flush())

	out := sb.String()
	require.Contains(t, out, `<Entry Key="k1">v1</Entry>`)
	require.Contains(t, out, `<Entry Key="k2">v2</Entry>`)
}
