package wire

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// Writer is the abstract sink marshalling writes into.
type Writer interface {
	// StartElement opens an element. Attributes may be added until the
	// first child or text is written.
	StartElement(name string) error
	// EndElement closes the most recently opened element.
	EndElement() error
	// Attr adds an attribute to the element opened by the last
	// StartElement.
	Attr(name, value string) error
	// Text writes character data into the open element.
	Text(s string) error
	// WriteString writes a complete element with text content.
	WriteString(name, value string) error
	// WriteBool writes a complete element in the wire boolean format.
	WriteBool(name string, v bool) error
	// WriteInt writes a complete base-10 integer element.
	WriteInt(name string, v int) error
	// Flush forces buffered output to the underlying sink.
	Flush() error
}

// xmlWriter adapts an encoding/xml encoder to the Writer contract.
// Start elements are held pending so attributes can still be attached.
type xmlWriter struct {
	enc     *xml.Encoder
	pending *xml.StartElement
	stack   []string
	rooted  bool
}

// NewWriter creates a Writer producing indented, namespace-qualified
// XML. The namespace is declared on the first (root) element.
func NewWriter(dst io.Writer) Writer {
	enc := xml.NewEncoder(dst)
	enc.Indent("", "  ")
	return &xmlWriter{enc: enc}
}

func (w *xmlWriter) flushPending() error {
	if w.pending == nil {
		return nil
	}
	start := *w.pending
	w.pending = nil
	return w.enc.EncodeToken(start)
}

func (w *xmlWriter) StartElement(name string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if !w.rooted {
		start.Attr = append(start.Attr, xml.Attr{
			Name: xml.Name{Local: "xmlns"}, Value: Namespace,
		})
		w.rooted = true
	}
	w.pending = &start
	w.stack = append(w.stack, name)
	return nil
}

func (w *xmlWriter) Attr(name, value string) error {
	if w.pending == nil {
		return fmt.Errorf("attribute %s: no open start element", name)
	}
	w.pending.Attr = append(w.pending.Attr, xml.Attr{
		Name: xml.Name{Local: name}, Value: value,
	})
	return nil
}

func (w *xmlWriter) Text(s string) error {
	if err := w.flushPending(); err != nil {
		return err
	}
	return w.enc.EncodeToken(xml.CharData(s))
}

func (w *xmlWriter) EndElement() error {
	if len(w.stack) == 0 {
		return fmt.Errorf("end element with no open element")
	}
	if err := w.flushPending(); err != nil {
		return err
	}
	name := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: name}})
}

func (w *xmlWriter) WriteString(name, value string) error {
	if err := w.StartElement(name); err != nil {
		return err
	}
	if err := w.Text(value); err != nil {
		return err
	}
	return w.EndElement()
}

func (w *xmlWriter) WriteBool(name string, v bool) error {
	return w.WriteString(name, FormatBool(v))
}

func (w *xmlWriter) WriteInt(name string, v int) error {
	return w.WriteString(name, strconv.Itoa(v))
}

func (w *xmlWriter) Flush() error {
	return w.enc.Flush()
}
