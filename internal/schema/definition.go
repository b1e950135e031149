package schema

// DiffPolicy selects how a multi-valued property is diffed on update.
// The policy is declared at registration time, never inferred from the
// value's shape.
type DiffPolicy int

const (
	// DiffWhole emits the entire value when anything changed, or one
	// delete when the value emptied. Default for scalars and
	// simple-valued collections.
	DiffWhole DiffPolicy = iota
	// DiffPerItem emits one discrete operation per added, modified or
	// removed item or key.
	DiffPerItem
)

func (p DiffPolicy) String() string {
	if p == DiffPerItem {
		return "per-item"
	}
	return "whole"
}

// Definition describes one schema-level property. Definitions are
// immutable after construction and compared by identity in change sets.
type Definition struct {
	name       string // wire element name, also the display name
	uri        string // filtering/indexing URI, empty when not addressable
	flags      Flag
	minVersion Version
	policy     DiffPolicy
	factory    func() any // default-value factory, nil for plain scalars
}

// Option configures optional Definition attributes.
type Option func(*Definition)

// WithFactory sets the default-value factory used by hydration when
// AutoInstantiateOnRead is set, and by callers needing a fresh value.
func WithFactory(fn func() any) Option {
	return func(d *Definition) { d.factory = fn }
}

// WithDiffPolicy overrides the default whole-value diff policy.
func WithDiffPolicy(p DiffPolicy) Option {
	return func(d *Definition) { d.policy = p }
}

// NewDefinition creates an immutable property definition. name is the
// wire element name; uri may be empty for properties that cannot be
// addressed in restrictions or field operations.
func NewDefinition(name, uri string, flags Flag, minVersion Version, opts ...Option) *Definition {
	d := &Definition{
		name:       name,
		uri:        uri,
		flags:      flags,
		minVersion: minVersion,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the wire element name.
func (d *Definition) Name() string { return d.name }

// URI returns the filtering URI, or "" when the property has none.
func (d *Definition) URI() string { return d.uri }

// Flags returns the capability bit set.
func (d *Definition) Flags() Flag { return d.flags }

// Has reports whether the definition carries the given capability.
func (d *Definition) Has(f Flag) bool { return d.flags.Has(f) }

// MinVersion returns the first protocol revision that understands the
// property.
func (d *Definition) MinVersion() Version { return d.minVersion }

// Policy returns the declared diff policy.
func (d *Definition) Policy() DiffPolicy { return d.policy }

// NewValue invokes the default-value factory. Returns nil when the
// definition has none.
func (d *Definition) NewValue() any {
	if d.factory == nil {
		return nil
	}
	return d.factory()
}

// UsableAt reports whether the property exists at revision v. Consulted
// on every read and write path.
func (d *Definition) UsableAt(v Version) bool {
	return v.AtLeast(d.minVersion)
}
