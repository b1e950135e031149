package item

import (
	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/wire"
)

// EmailKey identifies one slot of the email dictionary. The key
// doubles as the wire field index.
type EmailKey string

const (
	Email1 EmailKey = "EmailAddress1"
	Email2 EmailKey = "EmailAddress2"
	Email3 EmailKey = "EmailAddress3"
)

// EmailEntry is one keyed email address.
type EmailEntry struct {
	property.Complex
	key     EmailKey
	address string
}

// NewEmailEntry returns a blank entry; hydration fills the key from
// the wire.
func NewEmailEntry() *EmailEntry {
	return &EmailEntry{Complex: property.NewComplex("Entry")}
}

// Email creates an entry for a slot.
func Email(key EmailKey, address string) *EmailEntry {
	e := NewEmailEntry()
	e.key = key
	e.address = address
	return e
}

// EntryKey returns the slot this entry occupies.
func (e *EmailEntry) EntryKey() EmailKey { return e.key }

// FieldIndex returns the wire field index token addressing the slot.
func (e *EmailEntry) FieldIndex() string { return string(e.key) }

// Address returns the stored address.
func (e *EmailEntry) Address() string { return e.address }

// SetAddress replaces the stored address.
func (e *EmailEntry) SetAddress(s string) {
	e.address = s
	e.Changed()
}

// ReadXML hydrates from an Entry element: key attribute plus address
// text.
func (e *EmailEntry) ReadXML(r wire.Reader) error {
	if k := r.Attr("Key"); k != "" {
		e.key = EmailKey(k)
	}
	addr, err := r.ReadString()
	if err != nil {
		return err
	}
	e.address = addr
	return nil
}

// WriteXML emits the entry with its key attribute.
func (e *EmailEntry) WriteXML(w wire.Writer) error {
	if err := w.StartElement(e.WireName()); err != nil {
		return err
	}
	if err := w.Attr("Key", string(e.key)); err != nil {
		return err
	}
	if err := w.Text(e.address); err != nil {
		return err
	}
	return w.EndElement()
}

// NewEmailDictionary returns the keyed email slots property.
func NewEmailDictionary() *property.Dictionary[EmailKey, *EmailEntry] {
	return property.NewDictionary[EmailKey, *EmailEntry]("Emails", NewEmailEntry)
}
