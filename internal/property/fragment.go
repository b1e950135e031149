package property

import "github.com/propwire/propwire/internal/wire"

// containerFragment serializes a single member wrapped in its owning
// container element, the shape field operations carry multi-valued
// payloads in.
type containerFragment struct {
	name   string
	member wire.Marshaler
}

func (f *containerFragment) WireName() string { return f.name }

func (f *containerFragment) WriteXML(w wire.Writer) error {
	if err := w.StartElement(f.name); err != nil {
		return err
	}
	if err := f.member.WriteXML(w); err != nil {
		return err
	}
	return w.EndElement()
}
