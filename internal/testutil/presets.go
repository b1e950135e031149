package testutil

import (
	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/item"
)

// FullContact returns a builder with every property shape populated.
// Mirrors the documents the roundtrip command seeds.
func FullContact(t require.TestingT) *Builder {
	return NewContact(t,
		ItemID("AAMkAD-42"),
		DisplayName("Ada Lovelace"),
		Sensitivity("Normal"),
		Private(true),
		Notes("analytical engines"),
		Categories("science", "mathematics"),
		Member("Babbage", "cb@difference.example"),
		Member("Herschel", "jh@astronomy.example"),
		Email(item.Email1, "ada@lovelace.example"),
		Email(item.Email2, "countess@analytical.example"),
	)
}

// MinimalContact returns a builder carrying only the display name.
func MinimalContact(t require.TestingT) *Builder {
	return NewContact(t, ItemID(""), DisplayName("Grace Hopper"))
}
