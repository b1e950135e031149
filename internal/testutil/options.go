package testutil

import "github.com/propwire/propwire/internal/item"

type memberData struct {
	name    string
	address string
}

type emailData struct {
	key     item.EmailKey
	address string
}

type contactData struct {
	itemID      string
	displayName string
	sensitivity string
	private     *bool
	notesFormat item.NotesFormat
	notes       string
	categories  []string
	members     []memberData
	emails      []emailData
}

func defaultContact() contactData {
	return contactData{
		itemID:      "AAMkAD-1",
		displayName: "Ada Lovelace",
		notesFormat: item.FormatText,
	}
}

// ContactOption configures a contact during builder setup.
type ContactOption func(*contactData)

// ItemID sets the server identity. An empty ID omits the element.
func ItemID(id string) ContactOption {
	return func(c *contactData) { c.itemID = id }
}

// DisplayName sets the display name.
func DisplayName(name string) ContactOption {
	return func(c *contactData) { c.displayName = name }
}

// Sensitivity sets the sensitivity marker.
func Sensitivity(s string) ContactOption {
	return func(c *contactData) { c.sensitivity = s }
}

// Private marks the contact private or public.
func Private(v bool) ContactOption {
	return func(c *contactData) { c.private = &v }
}

// Notes sets the notes body text.
func Notes(text string) ContactOption {
	return func(c *contactData) { c.notes = text }
}

// NotesHTML sets an HTML notes body.
func NotesHTML(text string) ContactOption {
	return func(c *contactData) {
		c.notesFormat = item.FormatHTML
		c.notes = text
	}
}

// Categories sets the category list.
func Categories(names ...string) ContactOption {
	return func(c *contactData) { c.categories = names }
}

// Member appends a distribution member.
func Member(name, address string) ContactOption {
	return func(c *contactData) {
		c.members = append(c.members, memberData{name: name, address: address})
	}
}

// Email sets an email slot.
func Email(key item.EmailKey, address string) ContactOption {
	return func(c *contactData) {
		c.emails = append(c.emails, emailData{key: key, address: address})
	}
}
