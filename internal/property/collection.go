package property

import (
	"fmt"

	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// Item constrains collection members: complex values with identity.
type Item interface {
	comparable
	Value
}

// Collection is an ordered multi-valued property. Order and count
// derive solely from the main sequence; the Added, Modified and Removed
// lists only classify items for diffing, and an item occupies at most
// one of them.
type Collection[T Item] struct {
	Complex
	items    []T
	added    []T
	modified []T
	removed  []T

	// resolve maps a child element's wire tag to a fresh concrete item.
	// Unrecognized tags make hydration skip the whole element.
	resolve func(tag string) (T, bool)

	// alwaysWrite forces container emission even when empty. Declared
	// per type: recipient-style collections serialize unconditionally,
	// most others are omitted when empty.
	alwaysWrite bool
}

// NewCollection creates an empty collection serializing under name.
func NewCollection[T Item](name string, alwaysWrite bool, resolve func(tag string) (T, bool)) *Collection[T] {
	return &Collection[T]{
		Complex:     NewComplex(name),
		resolve:     resolve,
		alwaysWrite: alwaysWrite,
	}
}

// Items returns the main sequence. Callers must not mutate it.
func (c *Collection[T]) Items() []T { return c.items }

// Len returns the item count.
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the item at index i.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// Add appends item to the sequence and classifies it. Re-adding an
// item removed this session undoes the removal: the server still
// holds the item, so it re-enters clean rather than as a fresh
// addition that would duplicate it on the wire.
func (c *Collection[T]) Add(item T) {
	c.items = append(c.items, item)
	if contains(c.removed, item) {
		c.removed = drop(c.removed, item)
	} else if !contains(c.added, item) && !contains(c.modified, item) {
		c.added = append(c.added, item)
	}
	c.watch(item)
	c.Changed()
}

// Remove takes item out of the sequence. An item only ever added this
// session cancels out entirely; anything else is recorded for
// deletion. Returns false when item is not in the sequence.
func (c *Collection[T]) Remove(item T) bool {
	idx := index(c.items, item)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	if contains(c.added, item) {
		c.added = drop(c.added, item)
	} else {
		c.removed = append(c.removed, item)
	}
	c.modified = drop(c.modified, item)
	item.Unsubscribe()
	c.Changed()
	return true
}

// RemoveAt removes the item at index i.
func (c *Collection[T]) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	return c.Remove(c.items[i])
}

// Clear removes every item.
func (c *Collection[T]) Clear() {
	for len(c.items) > 0 {
		c.Remove(c.items[len(c.items)-1])
	}
}

func (c *Collection[T]) watch(item T) {
	item.Subscribe(func() { c.itemChanged(item) })
}

// itemChanged promotes an existing item to Modified. Items pending
// addition stay Added: they are emitted whole anyway.
func (c *Collection[T]) itemChanged(item T) {
	if !contains(c.added, item) && !contains(c.modified, item) {
		c.modified = append(c.modified, item)
	}
	c.Changed()
}

// ReadXML hydrates the collection from its container element. Loaded
// items are watched for later edits but enter no change set.
func (c *Collection[T]) ReadXML(r wire.Reader) error {
	return wire.EachChild(r, func(tag string) error {
		item, ok := c.resolve(tag)
		if !ok {
			return r.Skip()
		}
		if err := item.ReadXML(r); err != nil {
			return err
		}
		c.items = append(c.items, item)
		c.watch(item)
		return nil
	})
}

// WriteXML serializes the whole collection. Empty collections are
// omitted unless the type declares unconditional emission.
func (c *Collection[T]) WriteXML(w wire.Writer) error {
	if len(c.items) == 0 && !c.alwaysWrite {
		return nil
	}
	if err := w.StartElement(c.WireName()); err != nil {
		return err
	}
	for _, item := range c.items {
		if err := item.WriteXML(w); err != nil {
			return err
		}
	}
	return w.EndElement()
}

// UpdateOps computes the collection's own wire operations under the
// definition's declared policy.
//
// Per-item: every added item becomes a discrete append, every modified
// item a set, every removed item a delete carrying the item so the
// server can identify it.
//
// Whole: emit the entire collection when non-empty, else one delete of
// the property.
func (c *Collection[T]) UpdateOps(def *schema.Definition) ([]wire.UpdateOp, error) {
	if def.URI() == "" {
		return nil, fmt.Errorf("property %s has no URI for field operations", def.Name())
	}
	path := wire.FieldPath{URI: def.URI()}

	if def.Policy() == schema.DiffWhole {
		if len(c.items) > 0 {
			return []wire.UpdateOp{{Kind: wire.OpSet, Path: path, Element: def.Name(), Value: c}}, nil
		}
		return []wire.UpdateOp{{Kind: wire.OpDelete, Path: path}}, nil
	}

	var ops []wire.UpdateOp
	for _, item := range c.removed {
		ops = append(ops, wire.UpdateOp{
			Kind: wire.OpDelete, Path: path, Element: def.Name(),
			Value: &containerFragment{name: c.WireName(), member: item},
		})
	}
	for _, item := range c.added {
		ops = append(ops, wire.UpdateOp{
			Kind: wire.OpAppend, Path: path, Element: def.Name(),
			Value: &containerFragment{name: c.WireName(), member: item},
		})
	}
	for _, item := range c.modified {
		ops = append(ops, wire.UpdateOp{
			Kind: wire.OpSet, Path: path, Element: def.Name(),
			Value: &containerFragment{name: c.WireName(), member: item},
		})
	}
	return ops, nil
}

// IsDirty reports whether any change set is non-empty.
func (c *Collection[T]) IsDirty() bool {
	return len(c.added)+len(c.modified)+len(c.removed) > 0
}

// ClearChangeLog empties the change sets, establishing the current
// sequence as the new baseline.
func (c *Collection[T]) ClearChangeLog() {
	c.added = nil
	c.modified = nil
	c.removed = nil
	for _, item := range c.items {
		if t, ok := any(item).(Tracker); ok {
			t.ClearChangeLog()
		}
	}
}

// AddedItems returns the items pending creation. Test and debugging
// surface; the main sequence remains the source of truth.
func (c *Collection[T]) AddedItems() []T { return c.added }

// ModifiedItems returns the items pending re-emission.
func (c *Collection[T]) ModifiedItems() []T { return c.modified }

// RemovedItems returns the items pending deletion.
func (c *Collection[T]) RemovedItems() []T { return c.removed }

func index[T comparable](s []T, v T) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func contains[T comparable](s []T, v T) bool { return index(s, v) >= 0 }

func drop[T comparable](s []T, v T) []T {
	if i := index(s, v); i >= 0 {
		return append(s[:i], s[i+1:]...)
	}
	return s
}
