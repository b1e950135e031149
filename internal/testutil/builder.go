// Package testutil builds Contact fixtures for tests and for seeding
// example documents from the CLI.
package testutil

import (
	"strings"

	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/bag"
	"github.com/propwire/propwire/internal/item"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// Builder accumulates contact fields and renders them as a wire
// document or a hydrated bag.
type Builder struct {
	t require.TestingT
	c contactData
}

// NewContact creates a builder with preset defaults.
func NewContact(t require.TestingT, opts ...ContactOption) *Builder {
	c := defaultContact()
	for _, opt := range opts {
		opt(&c)
	}
	return &Builder{t: t, c: c}
}

// Doc renders the accumulated fields as a Contact wire document.
func (b *Builder) Doc() string {
	var sb strings.Builder
	w := wire.NewWriter(&sb)
	require.NoError(b.t, b.writeTo(w))
	require.NoError(b.t, w.Flush())
	return sb.String()
}

// Bag hydrates the document into a clean bag at the given version, as
// if it had just been loaded from a server response.
func (b *Builder) Bag(v schema.Version) *bag.Bag {
	pb := bag.New(item.Contact, v)
	r := wire.NewReader(strings.NewReader(b.Doc()))
	require.NoError(b.t, r.Next())
	require.NoError(b.t, pb.LoadXML(r))
	return pb
}

func (b *Builder) writeTo(w wire.Writer) error {
	if err := w.StartElement("Contact"); err != nil {
		return err
	}
	if b.c.itemID != "" {
		if err := w.WriteString("ItemId", b.c.itemID); err != nil {
			return err
		}
	}
	if b.c.displayName != "" {
		if err := w.WriteString("DisplayName", b.c.displayName); err != nil {
			return err
		}
	}
	if b.c.sensitivity != "" {
		if err := w.WriteString("Sensitivity", b.c.sensitivity); err != nil {
			return err
		}
	}
	if b.c.private != nil {
		if err := w.WriteBool("Private", *b.c.private); err != nil {
			return err
		}
	}
	if b.c.notes != "" {
		notes := item.NewNotes()
		notes.SetFormat(b.c.notesFormat)
		notes.SetText(b.c.notes)
		if err := notes.WriteXML(w); err != nil {
			return err
		}
	}
	if len(b.c.categories) > 0 {
		cats := item.NewCategories()
		for _, c := range b.c.categories {
			cats.Add(c)
		}
		if err := cats.WriteXML(w); err != nil {
			return err
		}
	}
	if len(b.c.members) > 0 {
		members := item.NewMembers()
		for _, m := range b.c.members {
			mb := item.NewMailbox()
			mb.SetName(m.name)
			mb.SetAddress(m.address)
			members.Add(mb)
		}
		if err := members.WriteXML(w); err != nil {
			return err
		}
	}
	if len(b.c.emails) > 0 {
		emails := item.NewEmailDictionary()
		for _, e := range b.c.emails {
			emails.AddOrReplace(item.Email(e.key, e.address))
		}
		if err := emails.WriteXML(w); err != nil {
			return err
		}
	}
	return w.EndElement()
}
