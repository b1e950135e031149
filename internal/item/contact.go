// Package item holds the sample object catalog the CLI and tests run
// the engine against: a Contact type touching every property shape
// (scalars, a version-gated field, an explicitly-loaded complex body,
// a whole-diffed string collection, a per-item-diffed mailbox
// collection, a keyed email dictionary) and a thin Group type sharing
// definitions with it. The production field catalogs live server-side
// and are out of scope here.
package item

import (
	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/schema"
)

// NewMembers returns the distribution members property. Recipient
// collections serialize even when empty, by declared policy.
func NewMembers() *property.Collection[*Mailbox] {
	return property.NewCollection("Members", true, func(tag string) (*Mailbox, bool) {
		if tag != "Mailbox" {
			return nil, false
		}
		return NewMailbox(), true
	})
}

// NewCategories returns the category list property.
func NewCategories() *property.StringList {
	return property.NewStringList("Categories", "String")
}

// Definitions shared by the catalog. Built once per process and
// compared by identity in change sets.
var (
	ItemID = schema.NewDefinition("ItemId", "item:ItemId",
		schema.CanFind, schema.V1)

	DisplayName = schema.NewDefinition("DisplayName", "contact:DisplayName",
		schema.CanSet|schema.CanUpdate|schema.CanDelete|schema.CanFind, schema.V1)

	// Sensitivity exists since protocol v2 and is fixed at creation.
	Sensitivity = schema.NewDefinition("Sensitivity", "item:Sensitivity",
		schema.CanSet|schema.CanFind, schema.V2)

	Private = schema.NewDefinition("Private", "contact:Private",
		schema.CanSet|schema.CanUpdate, schema.V1)

	NotesBody = schema.NewDefinition("Notes", "contact:Notes",
		schema.CanSet|schema.CanUpdate|schema.CanDelete|
			schema.MustBeExplicitlyLoaded|schema.AutoInstantiateOnRead|schema.ReuseInstance,
		schema.V1,
		schema.WithFactory(func() any { return NewNotes() }))

	Categories = schema.NewDefinition("Categories", "item:Categories",
		schema.CanSet|schema.CanUpdate|schema.CanDelete|schema.CanFind, schema.V1,
		schema.WithFactory(func() any { return NewCategories() }))

	Members = schema.NewDefinition("Members", "group:Members",
		schema.CanSet|schema.CanUpdate|schema.CanDelete, schema.V1,
		schema.WithFactory(func() any { return NewMembers() }),
		schema.WithDiffPolicy(schema.DiffPerItem))

	Emails = schema.NewDefinition("Emails", "contact:Emails",
		schema.CanSet|schema.CanUpdate|schema.CanDelete, schema.V1,
		schema.WithFactory(func() any { return NewEmailDictionary() }),
		schema.WithDiffPolicy(schema.DiffPerItem))
)

// Contact is the full sample schema, fields in server-mandated order.
var Contact = schema.NewSchema("Contact",
	ItemID,
	DisplayName,
	Sensitivity,
	Private,
	NotesBody,
	Categories,
	Members,
	Emails,
)

// Group is a thin distribution-list schema reusing Contact's
// definitions, so both index under the same URIs.
var Group = schema.NewSchema("Group",
	ItemID,
	DisplayName,
	Members,
)

// NewRegistry builds the process registry over the sample catalog.
func NewRegistry() (*schema.Registry, error) {
	return schema.NewRegistry(Contact, Group)
}
