package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterElements(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.StartElement("Contact"))
	require.NoError(t, w.WriteString("DisplayName", "Ada"))
	require.NoError(t, w.WriteBool("Private", true))
	require.NoError(t, w.WriteInt("Rank", 3))
	require.NoError(t, w.EndElement())
	require.NoError(t, w.Flush())

	out := sb.String()
	require.Contains(t, out, `<Contact xmlns="urn:propwire:types">`)
	require.Contains(t, out, "<DisplayName>Ada</DisplayName>")
	require.Contains(t, out, "<Private>true</Private>")
	require.Contains(t, out, "<Rank>3</Rank>")
	require.Contains(t, out, "</Contact>")
}

func TestWriterAttributes(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.StartElement("Notes"))
	require.NoError(t, w.Attr("Format", "Text"))
	require.NoError(t, w.Text("hello"))
	require.NoError(t, w.EndElement())
	require.NoError(t, w.Flush())

	require.Contains(t, sb.String(), `Format="Text"`)
	require.Contains(t, sb.String(), ">hello</Notes>")
}

func TestWriterAttrAfterContent(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.StartElement("a"))
	require.NoError(t, w.Text("x"))
	require.Error(t, w.Attr("late", "v"))
}

func TestWriterUnbalancedEnd(t *testing.T) {
	w := NewWriter(&strings.Builder{})
	require.Error(t, w.EndElement())
}

func TestWriterReaderSymmetry(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, w.StartElement("Contact"))
	require.NoError(t, w.WriteString("DisplayName", "Grace <Hopper>"))
	require.NoError(t, w.EndElement())
	require.NoError(t, w.Flush())

	r := NewReader(strings.NewReader(sb.String()))
	require.NoError(t, r.Next())
	var got string
	require.NoError(t, EachChild(r, func(name string) error {
		v, err := r.ReadString()
		got = v
		return err
	}))
	require.Equal(t, "Grace <Hopper>", got)
}
