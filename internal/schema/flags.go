package schema

import "strings"

// Flag is a bit set of property capabilities. The set is closed: the wire
// protocol defines no other capabilities.
type Flag uint32

const (
	// CanSet allows the property to be written on a new, unsaved object.
	CanSet Flag = 1 << iota
	// CanUpdate allows the property to appear in update operations.
	CanUpdate
	// CanDelete allows the property to be deleted from a saved object.
	CanDelete
	// CanFind allows the property to be used in search restrictions,
	// which also places it in the summary subset of its schema.
	CanFind
	// MustBeExplicitlyLoaded excludes the property from first-class
	// loading; callers request it by URI.
	MustBeExplicitlyLoaded
	// AutoInstantiateOnRead makes hydration create the property value
	// from its factory before reading into it.
	AutoInstantiateOnRead
	// ReuseInstance makes repeated hydration read into the existing
	// value instead of replacing it.
	ReuseInstance
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{CanSet, "CanSet"},
	{CanUpdate, "CanUpdate"},
	{CanDelete, "CanDelete"},
	{CanFind, "CanFind"},
	{MustBeExplicitlyLoaded, "MustBeExplicitlyLoaded"},
	{AutoInstantiateOnRead, "AutoInstantiateOnRead"},
	{ReuseInstance, "ReuseInstance"},
}

// Has reports whether all bits of other are set.
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

func (f Flag) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}
