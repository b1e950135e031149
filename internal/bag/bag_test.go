package bag

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/propwire/propwire/internal/item"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// testDefs builds a small schema: propA updatable since v1, propB
// settable only and gated to v2.
func testDefs() (*schema.Schema, *schema.Definition, *schema.Definition) {
	propA := schema.NewDefinition("PropA", "test:PropA",
		schema.CanSet|schema.CanUpdate|schema.CanDelete, schema.V1)
	propB := schema.NewDefinition("PropB", "test:PropB",
		schema.CanSet, schema.V2)
	return schema.NewSchema("Thing", propA, propB), propA, propB
}

func TestSetVersionGate(t *testing.T) {
	// Scenario: at v1, setting the v2-gated property fails and leaves
	// the bag unchanged; the v1 property sets fine; after commit the
	// bag diffs to nothing.
	s, propA, propB := testDefs()
	b := New(s, schema.V1)

	err := b.Set(propB, "x")
	require.True(t, schema.IsValidation(err))
	_, loaded := b.Get(propB)
	require.False(t, loaded)
	require.False(t, b.IsDirty())

	require.NoError(t, b.Set(propA, "y"))
	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Len(t, ops, 1)

	b.ClearChangeLog()
	ops, err = b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestSetVersionGatePassesAtV2(t *testing.T) {
	s, _, propB := testDefs()
	b := New(s, schema.V2)
	require.NoError(t, b.Set(propB, "x"))
}

func TestSetUnregisteredDefinitionPanics(t *testing.T) {
	s, _, _ := testDefs()
	b := New(s, schema.V1)
	foreign := schema.NewDefinition("Foreign", "test:Foreign", schema.CanSet, schema.V1)

	require.Panics(t, func() { _ = b.Set(foreign, "x") })
}

func TestGetDistinguishesNotLoadedFromNull(t *testing.T) {
	s, propA, propB := testDefs()
	b := New(s, schema.V2)

	_, loaded := b.Get(propA)
	require.False(t, loaded)

	require.NoError(t, b.Set(propA, "y"))
	v, loaded := b.Get(propA)
	require.True(t, loaded)
	require.Equal(t, "y", v)

	_, loaded = b.Get(propB)
	require.False(t, loaded)
}

func TestGetAutoInstantiatesFlaggedDefinitions(t *testing.T) {
	b := New(item.Contact, schema.V2)

	v, ok := b.Get(item.NotesBody)
	require.True(t, ok)
	notes := v.(*item.Notes)
	require.False(t, b.IsDirty())

	again, ok := b.Get(item.NotesBody)
	require.True(t, ok)
	require.Same(t, notes, again)

	// Categories carries a factory but not the flag, so it stays absent.
	_, ok = b.Get(item.Categories)
	require.False(t, ok)

	notes.SetText("first draft")
	require.Equal(t, "modified", b.State(item.NotesBody))
}

func TestGetDoesNotResurrectRemovedProperty(t *testing.T) {
	b := loadContact(t)
	require.NoError(t, b.Set(item.NotesBody, nil))

	_, ok := b.Get(item.NotesBody)
	require.False(t, ok)
	require.Equal(t, "removed", b.State(item.NotesBody))
}

func TestStateTransitions(t *testing.T) {
	s, propA, _ := testDefs()

	t.Run("fresh set is added", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		require.Equal(t, "added", b.State(propA))
	})

	t.Run("added stays added on re-set", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		require.NoError(t, b.Set(propA, "two"))
		require.Equal(t, "added", b.State(propA))
	})

	t.Run("committed then set is modified", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		b.ClearChangeLog()
		require.NoError(t, b.Set(propA, "two"))
		require.Equal(t, "modified", b.State(propA))
	})

	t.Run("unset of committed is removed", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		b.ClearChangeLog()
		require.NoError(t, b.Set(propA, nil))
		require.Equal(t, "removed", b.State(propA))
		_, loaded := b.Get(propA)
		require.False(t, loaded)
	})

	t.Run("added then unset cancels out", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		require.NoError(t, b.Set(propA, nil))
		require.Equal(t, "clean", b.State(propA))
		require.False(t, b.IsDirty())
	})

	t.Run("removed then set re-adds fresh", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, "one"))
		b.ClearChangeLog()
		require.NoError(t, b.Set(propA, nil))
		require.NoError(t, b.Set(propA, "two"))
		require.Equal(t, "added", b.State(propA))
	})

	t.Run("unset of never-loaded is a no-op", func(t *testing.T) {
		b := New(s, schema.V1)
		require.NoError(t, b.Set(propA, nil))
		require.False(t, b.IsDirty())
	})
}

func TestDiffIdempotence(t *testing.T) {
	s, _, _ := testDefs()
	b := New(s, schema.V1)

	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestUpdateRequiresCanUpdate(t *testing.T) {
	s, _, propB := testDefs()
	b := New(s, schema.V2)
	require.NoError(t, b.Set(propB, "x"))

	_, err := b.ComputeUpdateOps()
	require.True(t, schema.IsValidation(err))
}

func TestDeleteRequiresCanDelete(t *testing.T) {
	noDel := schema.NewDefinition("Pinned", "test:Pinned",
		schema.CanSet|schema.CanUpdate, schema.V1)
	s := schema.NewSchema("Thing", noDel)
	b := New(s, schema.V1)

	require.NoError(t, b.Set(noDel, "x"))
	b.ClearChangeLog()
	require.NoError(t, b.Set(noDel, nil))

	_, err := b.ComputeUpdateOps()
	require.True(t, schema.IsValidation(err))
}

func TestFailedCommitKeepsChangeSets(t *testing.T) {
	s, propA, _ := testDefs()
	b := New(s, schema.V1)
	require.NoError(t, b.Set(propA, "y"))

	// A failed external commit means no ClearChangeLog; the same ops
	// come out again on retry.
	ops1, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	ops2, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Equal(t, ops1, ops2)
}

func TestOpsFollowSchemaOrder(t *testing.T) {
	b := New(item.Contact, schema.V2)
	cats := item.NewCategories()
	cats.Add("science")
	require.NoError(t, b.Set(item.Categories, cats))
	require.NoError(t, b.Set(item.DisplayName, "Ada"))
	require.NoError(t, b.Set(item.Private, true))

	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Len(t, ops, 3)
	// Registration order, not set order.
	require.Equal(t, "contact:DisplayName", ops[0].Path.URI)
	require.Equal(t, "contact:Private", ops[1].Path.URI)
	require.Equal(t, "item:Categories", ops[2].Path.URI)
}

func TestRequireLoaded(t *testing.T) {
	s, propA, _ := testDefs()
	b := New(s, schema.V1)

	require.True(t, schema.IsValidation(b.RequireLoaded(propA)))
	require.NoError(t, b.Set(propA, "y"))
	require.NoError(t, b.RequireLoaded(propA))
}

const contactDoc = `<Contact>
  <ItemId>AAMkAD-42</ItemId>
  <DisplayName>Ada Lovelace</DisplayName>
  <Private>true</Private>
  <Notes Format="Text">analytical engines</Notes>
  <Categories><String>science</String></Categories>
  <Members><Mailbox><Name>Babbage</Name><Address>cb@difference.example</Address></Mailbox></Members>
  <Emails><Entry Key="EmailAddress1">ada@lovelace.example</Entry></Emails>
  <ServerOnlyThing>future</ServerOnlyThing>
</Contact>`

func loadContact(t *testing.T) *Bag {
	t.Helper()
	b := New(item.Contact, schema.V2)
	r := wire.NewReader(strings.NewReader(contactDoc))
	require.NoError(t, r.Next())
	require.NoError(t, b.LoadXML(r))
	return b
}

func TestLoadXMLDoesNotDirty(t *testing.T) {
	b := loadContact(t)

	require.False(t, b.IsDirty())
	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Empty(t, ops)
}

func TestLoadXMLHydratesValues(t *testing.T) {
	b := loadContact(t)

	v, ok := b.Get(item.DisplayName)
	require.True(t, ok)
	require.Equal(t, "Ada Lovelace", v)

	notes, ok := b.Get(item.NotesBody)
	require.True(t, ok)
	require.Equal(t, "analytical engines", notes.(*item.Notes).Text())

	members, ok := b.Get(item.Members)
	require.True(t, ok)
	require.Equal(t, 1, members.(interface{ Len() int }).Len())
}

func TestLoadXMLReusesInstance(t *testing.T) {
	b := loadContact(t)
	notes, _ := b.Get(item.NotesBody)

	r := wire.NewReader(strings.NewReader(
		`<Contact><Notes Format="Text">revised</Notes></Contact>`))
	require.NoError(t, r.Next())
	require.NoError(t, b.LoadXML(r))

	again, _ := b.Get(item.NotesBody)
	require.Same(t, notes, again)
	require.Equal(t, "revised", again.(*item.Notes).Text())
}

func TestLoadedComplexEditBubbles(t *testing.T) {
	b := loadContact(t)
	notes, _ := b.Get(item.NotesBody)

	notes.(*item.Notes).SetText("difference engines")
	require.Equal(t, "modified", b.State(item.NotesBody))
}

func TestReplacedComplexDoesNotPhantomNotify(t *testing.T) {
	b := loadContact(t)
	old, _ := b.Get(item.NotesBody)

	fresh := item.NewNotes()
	fresh.SetText("new subtree")
	require.NoError(t, b.Set(item.NotesBody, fresh))
	b.ClearChangeLog()

	// The detached subtree must not dirty the bag.
	old.(*item.Notes).SetText("phantom")
	require.False(t, b.IsDirty())

	fresh.SetText("real")
	require.Equal(t, "modified", b.State(item.NotesBody))
}

func TestApplyXMLDirties(t *testing.T) {
	b := loadContact(t)

	doc := `<Contact><DisplayName>Countess of Lovelace</DisplayName></Contact>`
	r := wire.NewReader(strings.NewReader(doc))
	require.NoError(t, r.Next())
	require.NoError(t, b.ApplyXML(r))

	require.Equal(t, "modified", b.State(item.DisplayName))
	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpSet, ops[0].Kind)
	require.Equal(t, "contact:DisplayName", ops[0].Path.URI)
}

func TestApplyXMLIgnoresIdenticalValues(t *testing.T) {
	b := loadContact(t)

	// Re-applying values already loaded is not an edit, even for
	// complex properties hydrated into fresh instances.
	doc := `<Contact>
	  <DisplayName>Ada Lovelace</DisplayName>
	  <Private>true</Private>
	  <Categories><String>science</String></Categories>
	</Contact>`
	r := wire.NewReader(strings.NewReader(doc))
	require.NoError(t, r.Next())
	require.NoError(t, b.ApplyXML(r))

	require.False(t, b.IsDirty())
}

func TestApplyXMLSkipsUnsettable(t *testing.T) {
	b := loadContact(t)

	// ItemId is CanFind only; an applied document must not trip on it.
	doc := `<Contact><ItemId>AAMkAD-43</ItemId></Contact>`
	r := wire.NewReader(strings.NewReader(doc))
	require.NoError(t, r.Next())
	require.NoError(t, b.ApplyXML(r))
	require.False(t, b.IsDirty())
}

func TestReconcileXMLRemovesAbsentProperties(t *testing.T) {
	b := loadContact(t)

	// Same document as the loaded one, minus Categories. A complete
	// rendition that drops a property means the property was deleted.
	doc := `<Contact>
	  <ItemId>AAMkAD-42</ItemId>
	  <DisplayName>Ada Lovelace</DisplayName>
	  <Private>true</Private>
	  <Notes Format="Text">analytical engines</Notes>
	  <Members><Mailbox><Name>Babbage</Name><Address>cb@difference.example</Address></Mailbox></Members>
	  <Emails><Entry Key="EmailAddress1">ada@lovelace.example</Entry></Emails>
	</Contact>`
	r := wire.NewReader(strings.NewReader(doc))
	require.NoError(t, r.Next())
	require.NoError(t, b.ReconcileXML(r))

	require.Equal(t, "removed", b.State(item.Categories))
	require.Equal(t, "clean", b.State(item.DisplayName))
	require.Equal(t, "clean", b.State(item.NotesBody))

	// ItemId is not settable, so reconciliation leaves it loaded.
	_, ok := b.Get(item.ItemID)
	require.True(t, ok)

	ops, err := b.ComputeUpdateOps()
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.Equal(t, wire.OpDelete, ops[0].Kind)
	require.Equal(t, "item:Categories", ops[0].Path.URI)
}

func TestClearChangeLogCascades(t *testing.T) {
	b := loadContact(t)
	members, _ := b.Get(item.Members)
	coll := members.(interface {
		Len() int
		IsDirty() bool
	})

	mb := item.NewMailbox()
	mb.SetAddress("al@analytical.example")
	addMember(t, b, mb)
	require.True(t, coll.IsDirty())

	b.ClearChangeLog()
	require.False(t, b.IsDirty())
	require.False(t, coll.IsDirty())
	require.Equal(t, 2, coll.Len())
}

func addMember(t *testing.T, b *Bag, mb *item.Mailbox) {
	t.Helper()
	v, ok := b.Get(item.Members)
	require.True(t, ok)
	v.(interface{ Add(*item.Mailbox) }).Add(mb)
}

func TestMalformedDocumentKeepsPartialState(t *testing.T) {
	b := New(item.Contact, schema.V2)
	r := wire.NewReader(strings.NewReader(
		`<Contact><DisplayName>Ada</DisplayName><Private><Oops>x</Oops></Private></Contact>`))
	require.NoError(t, r.Next())

	err := b.LoadXML(r)
	var fe *wire.FormatError
	require.True(t, errors.As(err, &fe))

	// Hydration before the failure is retained.
	v, ok := b.Get(item.DisplayName)
	require.True(t, ok)
	require.Equal(t, "Ada", v)
}

// TestProperty_SetNeverLeavesTwoSets drives random set/unset/commit
// traffic and checks each property sits in at most one change set.
func TestProperty_SetNeverLeavesTwoSets(t *testing.T) {
	s, propA, _ := testDefs()
	rapid.Check(t, func(t *rapid.T) {
		b := New(s, schema.V1)
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = b.Set(propA, "v")
			case 1:
				_ = b.Set(propA, nil)
			case 2:
				b.ClearChangeLog()
			}
			sets := 0
			if b.has(b.added, propA) {
				sets++
			}
			if b.has(b.modified, propA) {
				sets++
			}
			if b.has(b.removed, propA) {
				sets++
			}
			if sets > 1 {
				t.Fatalf("property in %d change sets", sets)
			}
		}
	})
}
