package bag

import (
	"fmt"

	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// ComputeUpdateOps walks the change sets in schema registration order
// and emits the minimal ordered operation list that persists them.
//
// Added and Modified properties become set operations, delegated to
// the value's own diff producer when it implements one, else emitted
// whole. Removed properties become delete operations. Emission demands
// CanUpdate for sets and CanDelete for deletes; a violation aborts
// with a validation error and no partial result is applied.
//
// An unmodified bag yields an empty list.
func (b *Bag) ComputeUpdateOps() ([]wire.UpdateOp, error) {
	var ops []wire.UpdateOp
	for _, def := range b.schema.Definitions() {
		switch {
		case b.has(b.added, def), b.has(b.modified, def):
			fieldOps, err := b.setOps(def)
			if err != nil {
				return nil, err
			}
			ops = append(ops, fieldOps...)
		case b.has(b.removed, def):
			op, err := b.deleteOp(def)
			if err != nil {
				return nil, err
			}
			ops = append(ops, op)
		}
	}
	return ops, nil
}

func (b *Bag) setOps(def *schema.Definition) ([]wire.UpdateOp, error) {
	if !def.Has(schema.CanUpdate) {
		return nil, &schema.ValidationError{Property: def.Name(), Reason: "cannot be updated"}
	}
	if def.URI() == "" {
		return nil, &schema.ValidationError{Property: def.Name(), Reason: "has no URI for field operations"}
	}
	value := b.values[def]
	if up, ok := value.(property.Updater); ok {
		// Whole-policy producers emit from current state, so they are
		// always safe to delegate to. Per-item producers emit from the
		// value's own change log, which a replacement assigned through
		// Set does not carry; that case falls through and the value is
		// emitted whole.
		if def.Policy() == schema.DiffWhole {
			return up.UpdateOps(def)
		}
		if t, tracked := value.(property.Tracker); !tracked || t.IsDirty() {
			return up.UpdateOps(def)
		}
	}
	return []wire.UpdateOp{{
		Kind:    wire.OpSet,
		Path:    wire.FieldPath{URI: def.URI()},
		Element: def.Name(),
		Value:   value,
	}}, nil
}

func (b *Bag) deleteOp(def *schema.Definition) (wire.UpdateOp, error) {
	if !def.Has(schema.CanDelete) {
		return wire.UpdateOp{}, &schema.ValidationError{Property: def.Name(), Reason: "cannot be deleted"}
	}
	if def.URI() == "" {
		return wire.UpdateOp{}, &schema.ValidationError{Property: def.Name(), Reason: "has no URI for field operations"}
	}
	return wire.UpdateOp{Kind: wire.OpDelete, Path: wire.FieldPath{URI: def.URI()}}, nil
}

// RequireLoaded returns a validation error when def has no value,
// the pre-commit check for required fields.
func (b *Bag) RequireLoaded(def *schema.Definition) error {
	if _, ok := b.values[def]; !ok {
		return &schema.ValidationError{Property: def.Name(), Reason: fmt.Sprintf(
			"required by %s but not loaded", b.schema.ObjectType())}
	}
	return nil
}
