package property

import (
	"fmt"

	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// StringList is a simple-valued collection. Simple values have no
// identity the server can address, so it always diffs under the binary
// whole-collection rule: emit everything when non-empty, emit one
// property delete when empty.
type StringList struct {
	Complex
	childName string
	values    []string
	dirty     bool
}

// NewStringList creates an empty list serializing under name with
// childName entries.
func NewStringList(name, childName string) *StringList {
	return &StringList{Complex: NewComplex(name), childName: childName}
}

// Values returns the current entries. Callers must not mutate.
func (l *StringList) Values() []string { return l.values }

// Len returns the entry count.
func (l *StringList) Len() int { return len(l.values) }

// Contains reports whether v is present.
func (l *StringList) Contains(v string) bool { return contains(l.values, v) }

// Add appends v.
func (l *StringList) Add(v string) {
	l.values = append(l.values, v)
	l.dirty = true
	l.Changed()
}

// Remove drops the first occurrence of v.
func (l *StringList) Remove(v string) bool {
	if !contains(l.values, v) {
		return false
	}
	l.values = drop(l.values, v)
	l.dirty = true
	l.Changed()
	return true
}

// ReadXML hydrates entries from the container element.
func (l *StringList) ReadXML(r wire.Reader) error {
	return wire.EachChild(r, func(tag string) error {
		if tag != l.childName {
			return r.Skip()
		}
		v, err := r.ReadString()
		if err != nil {
			return err
		}
		l.values = append(l.values, v)
		return nil
	})
}

// WriteXML serializes all entries; empty lists are omitted.
func (l *StringList) WriteXML(w wire.Writer) error {
	if len(l.values) == 0 {
		return nil
	}
	if err := w.StartElement(l.WireName()); err != nil {
		return err
	}
	for _, v := range l.values {
		if err := w.WriteString(l.childName, v); err != nil {
			return err
		}
	}
	return w.EndElement()
}

// UpdateOps applies the whole-collection rule regardless of the
// definition's declared policy.
func (l *StringList) UpdateOps(def *schema.Definition) ([]wire.UpdateOp, error) {
	if def.URI() == "" {
		return nil, fmt.Errorf("property %s has no URI for field operations", def.Name())
	}
	path := wire.FieldPath{URI: def.URI()}
	if len(l.values) == 0 {
		return []wire.UpdateOp{{Kind: wire.OpDelete, Path: path}}, nil
	}
	return []wire.UpdateOp{{Kind: wire.OpSet, Path: path, Element: def.Name(), Value: l}}, nil
}

// IsDirty reports whether the list changed since the last baseline.
func (l *StringList) IsDirty() bool { return l.dirty }

// ClearChangeLog establishes the current entries as the new baseline.
func (l *StringList) ClearChangeLog() { l.dirty = false }
