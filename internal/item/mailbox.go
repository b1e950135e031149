package item

import (
	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/wire"
)

// Mailbox is one addressable recipient: display name, address and an
// optional routing type.
type Mailbox struct {
	property.Complex
	name    string
	address string
	routing string
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{Complex: property.NewComplex("Mailbox")}
}

// Name returns the display name.
func (m *Mailbox) Name() string { return m.name }

// Address returns the address.
func (m *Mailbox) Address() string { return m.address }

// Routing returns the routing type, "" meaning the default.
func (m *Mailbox) Routing() string { return m.routing }

// SetName sets the display name.
func (m *Mailbox) SetName(s string) {
	m.name = s
	m.Changed()
}

// SetAddress sets the address.
func (m *Mailbox) SetAddress(s string) {
	m.address = s
	m.Changed()
}

// SetRouting sets the routing type.
func (m *Mailbox) SetRouting(s string) {
	m.routing = s
	m.Changed()
}

// ReadXML hydrates from a Mailbox element, skipping children this
// client does not know.
func (m *Mailbox) ReadXML(r wire.Reader) error {
	return wire.EachChild(r, func(tag string) error {
		switch tag {
		case "Name":
			v, err := r.ReadString()
			if err != nil {
				return err
			}
			m.name = v
		case "Address":
			v, err := r.ReadString()
			if err != nil {
				return err
			}
			m.address = v
		case "RoutingType":
			v, err := r.ReadString()
			if err != nil {
				return err
			}
			m.routing = v
		default:
			return r.Skip()
		}
		return nil
	})
}

// WriteXML emits only the fields carrying state; the default routing
// type stays off the wire.
func (m *Mailbox) WriteXML(w wire.Writer) error {
	if err := w.StartElement(m.WireName()); err != nil {
		return err
	}
	if m.name != "" {
		if err := w.WriteString("Name", m.name); err != nil {
			return err
		}
	}
	if m.address != "" {
		if err := w.WriteString("Address", m.address); err != nil {
			return err
		}
	}
	if m.routing != "" {
		if err := w.WriteString("RoutingType", m.routing); err != nil {
			return err
		}
	}
	return w.EndElement()
}
