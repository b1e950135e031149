// Package schema holds the static property catalog: immutable property
// definitions, per-type schemas, and the process-wide registry that
// indexes them. Schemas are built once at startup and shared read-only;
// the registry performs the only lock-guarded work in the engine (the
// lazy one-time URI index build).
package schema

import (
	"fmt"
	"sync"
)

// Schema is the ordered list of property definitions for one object
// type. Registration order is significant: the server expects fields in
// the declared order, and update operations are emitted in it.
type Schema struct {
	objectType string
	defs       []*Definition
	byName     map[string]*Definition
}

// NewSchema builds a schema from definitions in their server-mandated
// order. Panics on a duplicate wire name: that is a registration defect.
func NewSchema(objectType string, defs ...*Definition) *Schema {
	s := &Schema{
		objectType: objectType,
		defs:       defs,
		byName:     make(map[string]*Definition, len(defs)),
	}
	for _, d := range defs {
		if _, dup := s.byName[d.Name()]; dup {
			panic(&ConfigError{Detail: fmt.Sprintf(
				"type %s registers element %s twice", objectType, d.Name())})
		}
		s.byName[d.Name()] = d
	}
	return s
}

// ObjectType returns the wire element name of the object this schema
// describes.
func (s *Schema) ObjectType() string { return s.objectType }

// Definitions returns all definitions in registration order. Callers
// must not mutate the returned slice.
func (s *Schema) Definitions() []*Definition { return s.defs }

// ByName returns the definition with the given wire element name.
func (s *Schema) ByName(name string) (*Definition, bool) {
	d, ok := s.byName[name]
	return d, ok
}

// FirstClass returns the definitions loaded by default, in order.
func (s *Schema) FirstClass() []*Definition {
	var out []*Definition
	for _, d := range s.defs {
		if !d.Has(MustBeExplicitlyLoaded) {
			out = append(out, d)
		}
	}
	return out
}

// Summary returns the searchable definitions, in order.
func (s *Schema) Summary() []*Definition {
	var out []*Definition
	for _, d := range s.defs {
		if d.Has(CanFind) {
			out = append(out, d)
		}
	}
	return out
}

// Registry holds the schemas for every known object type. It is built
// explicitly at startup and immutable afterwards; consumers receive it
// by reference instead of reaching for ambient global state.
type Registry struct {
	schemas map[string]*Schema
	order   []string

	uriOnce sync.Once
	byURI   map[string]*Definition
}

// NewRegistry builds a registry over the given schemas.
func NewRegistry(schemas ...*Schema) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		if s == nil {
			return nil, ErrNilSchema
		}
		if _, dup := r.schemas[s.ObjectType()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSchema, s.ObjectType())
		}
		r.schemas[s.ObjectType()] = s
		r.order = append(r.order, s.ObjectType())
	}
	return r, nil
}

// Schema returns the schema for an object type.
func (r *Registry) Schema(objectType string) (*Schema, bool) {
	s, ok := r.schemas[objectType]
	return s, ok
}

// ObjectTypes returns the registered object type names in registration
// order.
func (r *Registry) ObjectTypes() []string { return r.order }

// FindByURI resolves a property URI to its definition. The flat index
// is built on first use, guarded for concurrent first access. Two
// definitions sharing a URI is a configuration defect and panics with a
// ConfigError during the build.
func (r *Registry) FindByURI(uri string) (*Definition, error) {
	r.uriOnce.Do(r.buildURIIndex)
	d, ok := r.byURI[uri]
	if !ok {
		return nil, fmt.Errorf("%w: uri %s", ErrNotFound, uri)
	}
	return d, nil
}

func (r *Registry) buildURIIndex() {
	idx := make(map[string]*Definition)
	for _, t := range r.order {
		for _, d := range r.schemas[t].Definitions() {
			uri := d.URI()
			if uri == "" {
				continue
			}
			if prior, dup := idx[uri]; dup && prior != d {
				panic(&ConfigError{Detail: fmt.Sprintf(
					"uri %s registered by both %s and %s", uri, prior.Name(), d.Name())})
			}
			idx[uri] = d
		}
	}
	r.byURI = idx
}
