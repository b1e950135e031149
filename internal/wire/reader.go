package wire

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader is the abstract cursor hydration runs against. It is always
// positioned on an element boundary: either a start element (attributes
// and content readable) or an end element.
type Reader interface {
	// Local returns the local name of the current element.
	Local() string
	// IsStart reports whether the cursor is on a start element.
	IsStart() bool
	// IsEnd reports whether the cursor is on an end element.
	IsEnd() bool
	// IsEmpty reports whether the current start element has no content.
	IsEmpty() (bool, error)
	// Attr returns the named attribute of the current start element,
	// or "" when absent.
	Attr(name string) string
	// ReadString consumes the current element's text content and its
	// end tag, leaving the cursor on the end element.
	ReadString() (string, error)
	// ReadBool is ReadString through the wire boolean format.
	ReadBool() (bool, error)
	// ReadInt is ReadString through base-10 integer parsing.
	ReadInt() (int, error)
	// Next advances to the next element boundary.
	Next() error
	// Skip consumes the rest of the current element's subtree, leaving
	// the cursor on its end element.
	Skip() error
}

// EachChild iterates the children of the current start element. fn is
// invoked with the cursor on each child's start element and must
// consume that child completely (ReadString, nested EachChild, or
// Skip). Returns with the cursor on the parent's end element.
func EachChild(r Reader, fn func(name string) error) error {
	if !r.IsStart() {
		return &FormatError{Element: r.Local(), Err: fmt.Errorf("not at a start element")}
	}
	parent := r.Local()
	for {
		if err := r.Next(); err != nil {
			return err
		}
		if r.IsEnd() {
			if r.Local() != parent {
				return &FormatError{Element: parent, Err: fmt.Errorf("unexpected end of %s", r.Local())}
			}
			return nil
		}
		if err := fn(r.Local()); err != nil {
			return err
		}
	}
}

// xmlReader adapts an encoding/xml token stream to the Reader contract.
type xmlReader struct {
	dec   *xml.Decoder
	local string
	attrs []xml.Attr
	start bool
	end   bool

	// one-token lookahead for IsEmpty
	peeked  bool
	peekTok xml.Token
	peekErr error
}

// NewReader creates a Reader over an XML document. The cursor starts
// before the first element; callers advance with Next.
func NewReader(src io.Reader) Reader {
	return &xmlReader{dec: xml.NewDecoder(src)}
}

func (r *xmlReader) token() (xml.Token, error) {
	if r.peeked {
		r.peeked = false
		return r.peekTok, r.peekErr
	}
	return r.dec.Token()
}

func (r *xmlReader) peek() (xml.Token, error) {
	if !r.peeked {
		r.peekTok, r.peekErr = r.dec.Token()
		r.peeked = true
	}
	return r.peekTok, r.peekErr
}

func (r *xmlReader) Local() string { return r.local }
func (r *xmlReader) IsStart() bool { return r.start }
func (r *xmlReader) IsEnd() bool   { return r.end }

func (r *xmlReader) Attr(name string) string {
	for _, a := range r.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// IsEmpty peeks past insignificant whitespace for the matching end tag.
func (r *xmlReader) IsEmpty() (bool, error) {
	if !r.start {
		return false, &FormatError{Element: r.local, Err: fmt.Errorf("not at a start element")}
	}
	for {
		tok, err := r.peek()
		if err != nil {
			return false, &FormatError{Element: r.local, Err: err}
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return true, nil
		case xml.CharData:
			if strings.TrimSpace(string(t)) != "" {
				return false, nil
			}
			// consume the whitespace and peek again
			r.peeked = false
		default:
			return false, nil
		}
	}
}

func (r *xmlReader) Next() error {
	for {
		tok, err := r.token()
		if err != nil {
			if err == io.EOF {
				return io.EOF
			}
			return &FormatError{Element: r.local, Err: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			r.local = t.Name.Local
			r.attrs = t.Attr
			r.start, r.end = true, false
			return nil
		case xml.EndElement:
			r.local = t.Name.Local
			r.attrs = nil
			r.start, r.end = false, true
			return nil
		default:
			// char data between elements, comments, directives
		}
	}
}

func (r *xmlReader) ReadString() (string, error) {
	if !r.start {
		return "", &FormatError{Element: r.local, Err: fmt.Errorf("not at a start element")}
	}
	name := r.local
	var sb strings.Builder
	for {
		tok, err := r.token()
		if err != nil {
			return "", &FormatError{Element: name, Err: err}
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			r.local = t.Name.Local
			r.attrs = nil
			r.start, r.end = false, true
			return sb.String(), nil
		case xml.StartElement:
			return "", &FormatError{Element: name, Err: fmt.Errorf("unexpected child %s in text element", t.Name.Local)}
		}
	}
}

func (r *xmlReader) ReadBool() (bool, error) {
	s, err := r.ReadString()
	if err != nil {
		return false, err
	}
	v, err := ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, &FormatError{Element: r.local, Err: err}
	}
	return v, nil
}

func (r *xmlReader) ReadInt() (int, error) {
	s, err := r.ReadString()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &FormatError{Element: r.local, Err: err}
	}
	return v, nil
}

func (r *xmlReader) Skip() error {
	if !r.start {
		return nil
	}
	name := r.local
	depth := 1
	for depth > 0 {
		tok, err := r.token()
		if err != nil {
			return &FormatError{Element: name, Err: err}
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	r.local = name
	r.attrs = nil
	r.start, r.end = false, true
	return nil
}
