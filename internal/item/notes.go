package item

import (
	"github.com/propwire/propwire/internal/property"
	"github.com/propwire/propwire/internal/wire"
)

// NotesFormat is the declared format of a notes body.
type NotesFormat string

const (
	FormatText NotesFormat = "Text"
	FormatHTML NotesFormat = "HTML"
)

// Notes is a free-text body with a format attribute.
type Notes struct {
	property.Complex
	format NotesFormat
	text   string
}

// NewNotes returns an empty text-format notes value.
func NewNotes() *Notes {
	return &Notes{Complex: property.NewComplex("Notes"), format: FormatText}
}

// Format returns the declared format.
func (n *Notes) Format() NotesFormat { return n.format }

// Text returns the body text.
func (n *Notes) Text() string { return n.text }

// SetFormat declares the body format.
func (n *Notes) SetFormat(f NotesFormat) {
	n.format = f
	n.Changed()
}

// SetText replaces the body text.
func (n *Notes) SetText(s string) {
	n.text = s
	n.Changed()
}

// ReadXML hydrates from the Notes element: format attribute plus text
// content.
func (n *Notes) ReadXML(r wire.Reader) error {
	if f := r.Attr("Format"); f != "" {
		n.format = NotesFormat(f)
	}
	text, err := r.ReadString()
	if err != nil {
		return err
	}
	n.text = text
	return nil
}

// WriteXML emits the element only when there is text to carry.
func (n *Notes) WriteXML(w wire.Writer) error {
	if n.text == "" {
		return nil
	}
	if err := w.StartElement(n.WireName()); err != nil {
		return err
	}
	if err := w.Attr("Format", string(n.format)); err != nil {
		return err
	}
	if err := w.Text(n.text); err != nil {
		return err
	}
	return w.EndElement()
}
