// Package object ties one property bag to one service object identity
// and enforces the commit discipline: a failed commit leaves the
// change log untouched for a safe retry, a successful one clears it
// atomically.
package object

import (
	"context"

	"github.com/google/uuid"

	"github.com/propwire/propwire/internal/bag"
	"github.com/propwire/propwire/internal/pubsub"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/wire"
)

// events carries object lifecycle notifications, payload is the
// object identity.
var events = pubsub.NewBroker[string]()

// Events subscribes to load and commit notifications for all objects
// in the process.
func Events(ctx context.Context) <-chan pubsub.Event[string] {
	return events.Subscribe(ctx)
}

// Committer applies an ordered operation list to whatever persists
// objects: a transport, a store, a test double. The engine never
// performs I/O itself.
type Committer func(ops []wire.UpdateOp) error

// Object is one service object instance: an identity plus the bag
// holding its properties.
type Object struct {
	id  string
	bag *bag.Bag
}

// New creates an unsaved object of the schema's type at the given
// protocol version, with a generated identity.
func New(s *schema.Schema, version schema.Version) *Object {
	return &Object{
		id:  uuid.NewString(),
		bag: bag.New(s, version),
	}
}

// WithID creates an object carrying a known identity, such as one
// loaded from a baseline store.
func WithID(id string, s *schema.Schema, version schema.Version) *Object {
	return &Object{id: id, bag: bag.New(s, version)}
}

// ID returns the object identity.
func (o *Object) ID() string { return o.id }

// Bag returns the owned property bag.
func (o *Object) Bag() *bag.Bag { return o.bag }

// LoadXML hydrates the object from a reader positioned at its start
// element, outside the change log.
func (o *Object) LoadXML(r wire.Reader) error {
	if err := o.bag.LoadXML(r); err != nil {
		return err
	}
	events.Publish(pubsub.LoadedEvent, o.id)
	return nil
}

// WriteXML serializes the full object.
func (o *Object) WriteXML(w wire.Writer) error { return o.bag.WriteXML(w) }

// IsDirty reports whether the object has uncommitted changes.
func (o *Object) IsDirty() bool { return o.bag.IsDirty() }

// Commit computes the pending operations and hands them to apply. On
// success the change log is cleared and the current state becomes the
// new baseline; on failure it is left untouched. A clean object
// commits trivially without invoking apply.
func (o *Object) Commit(apply Committer) ([]wire.UpdateOp, error) {
	ops, err := o.bag.ComputeUpdateOps()
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, nil
	}
	if err := apply(ops); err != nil {
		return nil, err
	}
	o.bag.ClearChangeLog()
	events.Publish(pubsub.CommittedEvent, o.id)
	return ops, nil
}
