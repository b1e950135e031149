package property

import (
	"fmt"

	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// Entry is one keyed member of a dictionary property. Entries carry
// their own key and the wire field index used to address them in
// indexed field operations.
type Entry[K comparable] interface {
	Value
	EntryKey() K
	FieldIndex() string
}

// Dictionary is a keyed multi-valued property diffed strictly per key:
// there is no whole-dictionary fallback. Key order follows first
// insertion.
type Dictionary[K comparable, E Entry[K]] struct {
	Complex
	entries  map[K]E
	order    []K
	added    []K
	modified []K
	removed  []K

	// newEntry produces a blank entry for hydration.
	newEntry func() E
	// removedIdx remembers the field index of removed keys, so deletes
	// can still be addressed after the entry is gone.
	removedIdx map[K]string
}

// NewDictionary creates an empty dictionary serializing under name.
func NewDictionary[K comparable, E Entry[K]](name string, newEntry func() E) *Dictionary[K, E] {
	return &Dictionary[K, E]{
		Complex:    NewComplex(name),
		entries:    make(map[K]E),
		newEntry:   newEntry,
		removedIdx: make(map[K]string),
	}
}

// Len returns the entry count.
func (d *Dictionary[K, E]) Len() int { return len(d.entries) }

// Get returns the entry for key.
func (d *Dictionary[K, E]) Get(key K) (E, bool) {
	e, ok := d.entries[key]
	return e, ok
}

// Keys returns the keys in first-insertion order.
func (d *Dictionary[K, E]) Keys() []K { return d.order }

// AddOrReplace stores entry under its own key. Replacing an existing
// key rewires the change subscription to the new entry and marks the
// key Modified unless it was added this session; a fresh key is
// tracked as Added. A key removed earlier this session re-enters as a
// fresh addition.
func (d *Dictionary[K, E]) AddOrReplace(entry E) {
	key := entry.EntryKey()
	d.removed = drop(d.removed, key)
	delete(d.removedIdx, key)

	if old, exists := d.entries[key]; exists {
		old.Unsubscribe()
		d.entries[key] = entry
		d.watch(entry)
		if !contains(d.added, key) && !contains(d.modified, key) {
			d.modified = append(d.modified, key)
		}
		d.Changed()
		return
	}

	d.entries[key] = entry
	if !contains(d.order, key) {
		d.order = append(d.order, key)
	}
	if !contains(d.added, key) {
		d.added = append(d.added, key)
	}
	d.modified = drop(d.modified, key)
	d.watch(entry)
	d.Changed()
}

// Remove deletes the entry under key. A key only ever added this
// session cancels out entirely; anything else is recorded for a
// per-key delete.
func (d *Dictionary[K, E]) Remove(key K) bool {
	entry, ok := d.entries[key]
	if !ok {
		return false
	}
	entry.Unsubscribe()
	delete(d.entries, key)
	d.order = drop(d.order, key)
	if contains(d.added, key) {
		d.added = drop(d.added, key)
	} else {
		d.removed = append(d.removed, key)
		d.removedIdx[key] = entry.FieldIndex()
	}
	d.modified = drop(d.modified, key)
	d.Changed()
	return true
}

func (d *Dictionary[K, E]) watch(entry E) {
	key := entry.EntryKey()
	entry.Subscribe(func() { d.entryChanged(key) })
}

func (d *Dictionary[K, E]) entryChanged(key K) {
	if !contains(d.added, key) && !contains(d.modified, key) {
		d.modified = append(d.modified, key)
	}
	d.Changed()
}

// ReadXML hydrates entries from the container element without touching
// the change sets. A hydrated key replaces any existing entry.
func (d *Dictionary[K, E]) ReadXML(r wire.Reader) error {
	return wire.EachChild(r, func(tag string) error {
		entry := d.newEntry()
		if tag != entry.WireName() {
			return r.Skip()
		}
		if err := entry.ReadXML(r); err != nil {
			return err
		}
		key := entry.EntryKey()
		if old, exists := d.entries[key]; exists {
			old.Unsubscribe()
		}
		d.entries[key] = entry
		if !contains(d.order, key) {
			d.order = append(d.order, key)
		}
		d.watch(entry)
		return nil
	})
}

// WriteXML serializes all entries in key order; empty dictionaries are
// omitted.
func (d *Dictionary[K, E]) WriteXML(w wire.Writer) error {
	if len(d.entries) == 0 {
		return nil
	}
	if err := w.StartElement(d.WireName()); err != nil {
		return err
	}
	for _, key := range d.order {
		if err := d.entries[key].WriteXML(w); err != nil {
			return err
		}
	}
	return w.EndElement()
}

// UpdateOps emits one set per added or modified key and one delete per
// removed key, each addressed by {propertyURI, fieldIndex}.
func (d *Dictionary[K, E]) UpdateOps(def *schema.Definition) ([]wire.UpdateOp, error) {
	if def.URI() == "" {
		return nil, fmt.Errorf("property %s has no URI for field operations", def.Name())
	}
	var ops []wire.UpdateOp
	for _, key := range d.order {
		if !contains(d.added, key) && !contains(d.modified, key) {
			continue
		}
		entry := d.entries[key]
		ops = append(ops, wire.UpdateOp{
			Kind:    wire.OpSet,
			Path:    wire.FieldPath{URI: def.URI(), Index: entry.FieldIndex()},
			Element: def.Name(),
			Value:   &containerFragment{name: d.WireName(), member: entry},
		})
	}
	for _, key := range d.removed {
		ops = append(ops, wire.UpdateOp{
			Kind: wire.OpDelete,
			Path: wire.FieldPath{URI: def.URI(), Index: d.removedIdx[key]},
		})
	}
	return ops, nil
}

// IsDirty reports whether any change set is non-empty.
func (d *Dictionary[K, E]) IsDirty() bool {
	return len(d.added)+len(d.modified)+len(d.removed) > 0
}

// ClearChangeLog empties the change sets, establishing the current
// entries as the new baseline.
func (d *Dictionary[K, E]) ClearChangeLog() {
	d.added = nil
	d.modified = nil
	d.removed = nil
	d.removedIdx = make(map[K]string)
	for _, e := range d.entries {
		if t, ok := any(e).(Tracker); ok {
			t.ClearChangeLog()
		}
	}
}

// AddedKeys returns the keys pending creation.
func (d *Dictionary[K, E]) AddedKeys() []K { return d.added }

// ModifiedKeys returns the keys pending re-emission.
func (d *Dictionary[K, E]) ModifiedKeys() []K { return d.modified }

// RemovedKeys returns the keys pending deletion.
func (d *Dictionary[K, E]) RemovedKeys() []K { return d.removed }
