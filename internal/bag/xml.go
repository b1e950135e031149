package bag

import (
	"fmt"
	"strings"

	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// LoadXML hydrates the bag from a reader positioned at the object's
// start element. Values are populated without touching the change
// sets; elements no definition claims are skipped, which keeps old
// clients working against newer server schemas.
func (b *Bag) LoadXML(r wire.Reader) error {
	return wire.EachChild(r, func(name string) error {
		def, ok := b.schema.ByName(name)
		if !ok {
			return r.Skip()
		}
		value, err := b.readValue(def, r)
		if err != nil {
			return err
		}
		b.store(def, value)
		return nil
	})
}

// readValue hydrates one property element into a value, honoring the
// definition's instantiation flags.
func (b *Bag) readValue(def *schema.Definition, r wire.Reader) (any, error) {
	if def.NewValue() == nil {
		// plain scalar
		return r.ReadString()
	}

	var target any
	if existing, ok := b.values[def]; ok && def.Has(schema.ReuseInstance) {
		target = existing
	} else {
		target = def.NewValue()
	}
	u, ok := target.(wire.Unmarshaler)
	if !ok {
		return nil, &wire.FormatError{Element: def.Name(), Err: fmt.Errorf(
			"factory value %T cannot hydrate", target)}
	}
	if err := u.ReadXML(r); err != nil {
		return nil, err
	}
	return target, nil
}

// store places a hydrated value into the bag outside the change log,
// wiring the change subscription so later edits still bubble.
func (b *Bag) store(def *schema.Definition, value any) {
	if old, ok := b.values[def].(property.Value); ok && any(old) != value {
		old.Unsubscribe()
	}
	b.values[def] = value
	if v, ok := value.(property.Value); ok {
		v.Subscribe(func() { b.valueChanged(def) })
	}
}

// ApplyXML routes a document through Set, so every property it carries
// lands in the change log. This is how an edited document becomes a
// change set against a loaded baseline. Properties the document
// carries but the schema cannot set are skipped; version violations
// surface as validation errors. Properties the document omits are left
// alone, making ApplyXML a partial patch.
func (b *Bag) ApplyXML(r wire.Reader) error {
	return b.applyChildren(r, nil)
}

// ReconcileXML applies a document with complete-document semantics:
// on top of ApplyXML's patching, a settable property the bag holds but
// the document omits is treated as deleted and routed through Set with
// a nil value.
func (b *Bag) ReconcileXML(r wire.Reader) error {
	visited := make(map[*schema.Definition]struct{})
	if err := b.applyChildren(r, visited); err != nil {
		return err
	}
	for _, def := range b.schema.Definitions() {
		if !def.Has(schema.CanSet) {
			continue
		}
		if _, seen := visited[def]; seen {
			continue
		}
		if _, loaded := b.values[def]; !loaded {
			continue
		}
		if err := b.Set(def, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bag) applyChildren(r wire.Reader, visited map[*schema.Definition]struct{}) error {
	return wire.EachChild(r, func(name string) error {
		def, ok := b.schema.ByName(name)
		if !ok || !def.Has(schema.CanSet) {
			return r.Skip()
		}
		if visited != nil {
			visited[def] = struct{}{}
		}
		// Complex values are hydrated into a fresh instance first so
		// assignment goes through Set as a wholesale replacement.
		var value any
		if def.NewValue() == nil {
			s, err := r.ReadString()
			if err != nil {
				return err
			}
			value = s
		} else {
			v := def.NewValue()
			u, ok := v.(wire.Unmarshaler)
			if !ok {
				return &wire.FormatError{Element: def.Name(), Err: fmt.Errorf(
					"factory value %T cannot hydrate", v)}
			}
			if err := u.ReadXML(r); err != nil {
				return err
			}
			value = v
		}
		// An incoming value identical to the loaded one is not an edit
		// and must not dirty the bag.
		if prior, loaded := b.values[def]; loaded && sameRendering(def, prior, value) {
			return nil
		}
		return b.Set(def, value)
	})
}

// sameRendering compares two values by their serialized form, the one
// equality the codec can always answer.
func sameRendering(def *schema.Definition, a, b any) bool {
	ra, errA := renderValue(def, a)
	rb, errB := renderValue(def, b)
	return errA == nil && errB == nil && ra == rb
}

func renderValue(def *schema.Definition, value any) (string, error) {
	var sb strings.Builder
	w := wire.NewWriter(&sb)
	if err := writeValue(w, def, value); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteXML serializes the full object in schema registration order,
// the shape a create operation sends.
func (b *Bag) WriteXML(w wire.Writer) error {
	if err := w.StartElement(b.schema.ObjectType()); err != nil {
		return err
	}
	for _, def := range b.schema.Definitions() {
		value, ok := b.values[def]
		if !ok || value == nil {
			continue
		}
		if err := writeValue(w, def, value); err != nil {
			return err
		}
	}
	if err := w.EndElement(); err != nil {
		return err
	}
	return w.Flush()
}

func writeValue(w wire.Writer, def *schema.Definition, value any) error {
	switch v := value.(type) {
	case wire.Marshaler:
		return v.WriteXML(w)
	case string:
		return w.WriteString(def.Name(), v)
	case bool:
		return w.WriteBool(def.Name(), v)
	case int:
		return w.WriteInt(def.Name(), v)
	default:
		return w.WriteString(def.Name(), fmt.Sprint(v))
	}
}
