// Package property implements the nested value machinery of the
// engine: the Complex base every self-serializing value embeds, the
// ordered per-item-diffable collection, and the keyed per-entry-
// diffable dictionary. All change tracking follows one state machine:
// Clean, Added, Modified, Removed, with same-session add+remove
// cancelling out entirely.
package property

import (
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// Value is the contract every nested property value satisfies: it
// hydrates from a reader positioned at its start element (skipping
// children it does not recognize), serializes itself as one complete
// element, and accepts at most one change subscriber.
type Value interface {
	wire.Marshaler
	wire.Unmarshaler
	Subscribe(fn func())
	Unsubscribe()
}

// Updater is the diff-producer contract. A value implementing it owns
// its own minimal-update computation; the property bag delegates to it
// instead of emitting the whole value.
type Updater interface {
	UpdateOps(def *schema.Definition) ([]wire.UpdateOp, error)
}

// Tracker is implemented by values that keep change sets of their own.
// The bag cascades ClearChangeLog into them after a successful commit.
type Tracker interface {
	IsDirty() bool
	ClearChangeLog()
}

// Complex is the base of every nested property value. It carries the
// value's wire element name and a single change subscriber; mutation
// outside of hydration fires exactly one signal to the owner.
//
// When a nested reference is replaced wholesale the owner must rewire:
// unsubscribe the old value, subscribe the new one. A detached subtree
// that stays subscribed produces phantom notifications.
type Complex struct {
	name     string
	onChange func()
}

// NewComplex returns a base with the given wire element name.
func NewComplex(name string) Complex {
	return Complex{name: name}
}

// WireName returns the element name the value serializes under.
func (c *Complex) WireName() string { return c.name }

// Subscribe registers the single change subscriber, replacing any
// previous one.
func (c *Complex) Subscribe(fn func()) { c.onChange = fn }

// Unsubscribe detaches the current subscriber.
func (c *Complex) Unsubscribe() { c.onChange = nil }

// Changed notifies the subscriber. Concrete types call it from every
// mutating setter; hydration writes fields directly and stays silent.
func (c *Complex) Changed() {
	if c.onChange != nil {
		c.onChange()
	}
}
