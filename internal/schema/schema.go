// Package schema declares the documents stored by the time tracker and the
// metadata the seeder needs to synthesize them.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// FieldType tags the kind of value a field holds.
type FieldType int

const (
	Text FieldType = iota
	Timestamp
	Number
	Reference
	ReferenceList
)

func (t FieldType) String() string {
	switch t {
	case Text:
		return "text"
	case Timestamp:
		return "timestamp"
	case Number:
		return "number"
	case Reference:
		return "reference"
	case ReferenceList:
		return "reference[]"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Hint names the category of synthetic value a field should receive.
type Hint string

const (
	HintNone        Hint = ""
	HintUserName    Hint = "internet.userName"
	HintEmail       Hint = "internet.email"
	HintPassword    Hint = "internet.password"
	HintFirstName   Hint = "name.firstName"
	HintLastName    Hint = "name.lastName"
	HintCompanyName Hint = "company.companyName"
	HintParagraph   Hint = "lorem.paragraph"

	fkPrefix = "fk:"
)

// ForeignKey returns the hint that draws ids from the entity's collection.
func ForeignKey(entity string) Hint { return Hint(fkPrefix + entity) }

// Target returns the referenced entity for foreign-key hints.
func (h Hint) Target() (string, bool) {
	if !strings.HasPrefix(string(h), fkPrefix) {
		return "", false
	}
	return strings.TrimPrefix(string(h), fkPrefix), true
}

// Field describes one document key.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Ref      string // target entity for reference fields
	Hint     Hint
	Rule     string // validator tag applied to present values, e.g. "gte=0"
}

// Document is a schema-shaped record ready for insertion.
type Document map[string]any

const (
	CreatedAtKey = "createdAt"
	UpdatedAtKey = "updatedAt"
)

// Entity is a named record type stored in one collection.
type Entity struct {
	Name       string
	Collection string
	Fields     []Field
	Timestamps bool
}

// Field looks up a field by name.
func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Stamp sets the managed timestamps on doc, leaving other entities untouched.
func (e Entity) Stamp(doc Document, now time.Time) {
	if !e.Timestamps {
		return
	}
	now = now.UTC()
	if _, ok := doc[CreatedAtKey]; !ok {
		doc[CreatedAtKey] = now
	}
	doc[UpdatedAtKey] = now
}

// Hinted reports whether every required field can be synthesized.
func (e Entity) Hinted() bool {
	for _, f := range e.Fields {
		if f.Required && f.Hint == HintNone {
			return false
		}
	}
	return true
}
