package schema

import "fmt"

// Version is an ordered protocol revision. Every property declares the
// minimum revision that understands it; the active revision is chosen by
// the request layer that owns the object.
type Version int

const (
	// V1 is the initial protocol revision.
	V1 Version = iota + 1
	// V2 added dictionary field addressing and body attributes.
	V2
	// V3 added extended recipient routing.
	V3
	// V4 is the current revision.
	V4
)

// Latest is the most recent revision this build understands.
const Latest = V4

var versionNames = map[Version]string{
	V1: "v1",
	V2: "v2",
	V3: "v3",
	V4: "v4",
}

func (v Version) String() string {
	if name, ok := versionNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Version(%d)", int(v))
}

// AtLeast reports whether v is min or newer.
func (v Version) AtLeast(min Version) bool {
	return v >= min
}

// ParseVersion maps a revision name ("v1".."v4") to its Version.
func ParseVersion(s string) (Version, error) {
	for v, name := range versionNames {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown protocol version %q", s)
}
