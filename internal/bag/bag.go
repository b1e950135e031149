// Package bag implements the per-instance property store and change
// tracker. A bag maps property definitions to values and classifies
// every mutation as Added, Modified or Removed; on commit it walks the
// change sets, delegating to each value's own diff producer, to emit
// the minimal ordered list of wire operations.
//
// Bags are exclusively owned by one service object and are not safe
// for unsynchronized concurrent mutation; that is a caller obligation.
package bag

import (
	"fmt"

	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/schema"
)

// Bag is a change-tracked property store for one object instance.
type Bag struct {
	schema  *schema.Schema
	version schema.Version

	values   map[*schema.Definition]any
	added    map[*schema.Definition]struct{}
	modified map[*schema.Definition]struct{}
	removed  map[*schema.Definition]struct{}
}

// New creates an empty bag for one object governed by the given schema
// at the session's active protocol version.
func New(s *schema.Schema, version schema.Version) *Bag {
	return &Bag{
		schema:   s,
		version:  version,
		values:   make(map[*schema.Definition]any),
		added:    make(map[*schema.Definition]struct{}),
		modified: make(map[*schema.Definition]struct{}),
		removed:  make(map[*schema.Definition]struct{}),
	}
}

// Schema returns the governing schema.
func (b *Bag) Schema() *schema.Schema { return b.schema }

// Version returns the active protocol version.
func (b *Bag) Version() schema.Version { return b.version }

// Get returns the loaded value for def. The second result
// distinguishes "not loaded" from a loaded null.
//
// Definitions flagged AutoInstantiateOnRead materialize an empty value
// from their factory on first read instead of reporting absence; the
// materialized value lands outside the change log, and edits to it
// bubble like any loaded value. A property removed this session is not
// resurrected.
func (b *Bag) Get(def *schema.Definition) (any, bool) {
	v, ok := b.values[def]
	if !ok && def.Has(schema.AutoInstantiateOnRead) && !b.has(b.removed, def) {
		if v = def.NewValue(); v != nil {
			b.store(def, v)
			return v, true
		}
	}
	return v, ok
}

// Set assigns value to def, validating the version gate and CanSet
// capability first; on a validation failure the bag is left unchanged.
// A nil value unsets: an existing property transitions to Removed (or
// cancels out entirely when it was added this session).
//
// Classification: a property with no prior value this session is
// Added; an Added property stays Added; anything previously present
// becomes Modified; a property removed this session re-enters as a
// fresh addition.
func (b *Bag) Set(def *schema.Definition, value any) error {
	if _, ok := b.schema.ByName(def.Name()); !ok {
		panic(&schema.ConfigError{Detail: fmt.Sprintf(
			"property %s is not registered for type %s", def.Name(), b.schema.ObjectType())})
	}
	if !def.UsableAt(b.version) {
		return &schema.ValidationError{Property: def.Name(), Reason: fmt.Sprintf(
			"requires protocol %s, session is %s", def.MinVersion(), b.version)}
	}
	if value == nil {
		b.unset(def)
		return nil
	}
	if !def.Has(schema.CanSet) {
		return &schema.ValidationError{Property: def.Name(), Reason: "cannot be set"}
	}

	prior, hadValue := b.values[def]
	if old, ok := prior.(property.Value); ok {
		old.Unsubscribe()
	}
	b.values[def] = value
	if v, ok := value.(property.Value); ok {
		v.Subscribe(func() { b.valueChanged(def) })
	}

	switch {
	case b.has(b.removed, def):
		// Removed never goes straight to Modified: re-adding makes it
		// a fresh key.
		delete(b.removed, def)
		b.added[def] = struct{}{}
	case b.has(b.added, def):
		// stays Added
	case hadValue:
		b.modified[def] = struct{}{}
	default:
		b.added[def] = struct{}{}
	}
	return nil
}

func (b *Bag) unset(def *schema.Definition) {
	prior, hadValue := b.values[def]
	if !hadValue {
		return
	}
	if old, ok := prior.(property.Value); ok {
		old.Unsubscribe()
	}
	delete(b.values, def)
	delete(b.modified, def)
	if b.has(b.added, def) {
		// Added then unset in one session nets to nothing.
		delete(b.added, def)
		return
	}
	b.removed[def] = struct{}{}
}

// valueChanged is the bubbled signal from a nested complex value.
func (b *Bag) valueChanged(def *schema.Definition) {
	if b.has(b.added, def) || b.has(b.removed, def) {
		return
	}
	b.modified[def] = struct{}{}
}

func (b *Bag) has(set map[*schema.Definition]struct{}, def *schema.Definition) bool {
	_, ok := set[def]
	return ok
}

// IsDirty reports whether anything changed since the last baseline.
func (b *Bag) IsDirty() bool {
	return len(b.added)+len(b.modified)+len(b.removed) > 0
}

// State reports which change set def currently occupies.
func (b *Bag) State(def *schema.Definition) string {
	switch {
	case b.has(b.added, def):
		return "added"
	case b.has(b.modified, def):
		return "modified"
	case b.has(b.removed, def):
		return "removed"
	}
	return "clean"
}

// ClearChangeLog atomically empties all three change sets and cascades
// into nested tracked values, establishing the current state as the
// new baseline. Call only after a successful external commit; a failed
// commit must leave the sets untouched for a safe retry.
func (b *Bag) ClearChangeLog() {
	b.added = make(map[*schema.Definition]struct{})
	b.modified = make(map[*schema.Definition]struct{})
	b.removed = make(map[*schema.Definition]struct{})
	for _, v := range b.values {
		if t, ok := v.(property.Tracker); ok {
			t.ClearChangeLog()
		}
	}
}
