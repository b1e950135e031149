package wire

import "fmt"

// OpKind classifies one update operation.
type OpKind int

const (
	// OpSet replaces a field's value.
	OpSet OpKind = iota
	// OpAppend adds one item to a multi-valued field.
	OpAppend
	// OpDelete removes a field, or one indexed entry of it.
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpSet:
		return "Set"
	case OpAppend:
		return "Append"
	case OpDelete:
		return "Delete"
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// FieldPath addresses the field an operation applies to. Index is set
// only for dictionary entries.
type FieldPath struct {
	URI   string
	Index string
}

func (p FieldPath) String() string {
	if p.Index != "" {
		return p.URI + "[" + p.Index + "]"
	}
	return p.URI
}

// UpdateOp is one wire operation produced by diffing a property bag.
// Ops are emitted in schema registration order and applied in order.
type UpdateOp struct {
	Kind    OpKind
	Path    FieldPath
	Element string // wire element name carrying the value, "" for deletes
	Value   any    // scalar, or a Marshaler for complex payloads
}

func (op UpdateOp) String() string {
	if op.Kind == OpDelete {
		return fmt.Sprintf("Delete(%s)", op.Path)
	}
	return fmt.Sprintf("%s(%s)", op.Kind, op.Path)
}

// MarshalOps renders an ordered operation list as an Updates fragment.
func MarshalOps(w Writer, ops []UpdateOp) error {
	if err := w.StartElement("Updates"); err != nil {
		return err
	}
	for _, op := range ops {
		if err := marshalOp(w, op); err != nil {
			return err
		}
	}
	if err := w.EndElement(); err != nil {
		return err
	}
	return w.Flush()
}

func marshalOp(w Writer, op UpdateOp) error {
	if err := w.StartElement(op.Kind.String() + "Field"); err != nil {
		return err
	}
	if err := marshalFieldPath(w, op.Path); err != nil {
		return err
	}
	// Deletes are usually bare, but collection item deletes carry the
	// item so the server can identify which one goes.
	if op.Kind != OpDelete || op.Value != nil {
		if err := marshalOpValue(w, op); err != nil {
			return err
		}
	}
	return w.EndElement()
}

func marshalFieldPath(w Writer, p FieldPath) error {
	name := "FieldURI"
	if p.Index != "" {
		name = "IndexedFieldURI"
	}
	if err := w.StartElement(name); err != nil {
		return err
	}
	if err := w.Attr("URI", p.URI); err != nil {
		return err
	}
	if p.Index != "" {
		if err := w.Attr("Index", p.Index); err != nil {
			return err
		}
	}
	return w.EndElement()
}

func marshalOpValue(w Writer, op UpdateOp) error {
	switch v := op.Value.(type) {
	case Marshaler:
		return v.WriteXML(w)
	case string:
		return w.WriteString(op.Element, v)
	case bool:
		return w.WriteBool(op.Element, v)
	case int:
		return w.WriteInt(op.Element, v)
	case nil:
		return w.WriteString(op.Element, "")
	default:
		return w.WriteString(op.Element, fmt.Sprint(v))
	}
}
