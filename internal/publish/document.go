package publish

import (
	"encoding/json"
	"fmt"
)

// Document is the parsed representation of one publish request and the
// input to the pipeline. The protocol layer builds it; the pipeline only
// reads it.
type Document struct {
	// Type holds the microformat type of the request, e.g. ["h-entry"].
	Type []string

	// Properties maps a property name to its ordered values. Absence of
	// a key means "not set", never an error.
	Properties map[string][]Value

	// Commands holds protocol-level mp-* commands (keyed without the
	// "mp-" prefix), e.g. "slug" and "syndicate-to".
	Commands map[string][]string

	// Files maps an attachment role ("photo", "file") to its uploads.
	Files map[string][]Attachment
}

// Attachment is one binary file submitted alongside a Document. It is
// owned by the current request and discarded after upload.
type Attachment struct {
	Filename string
	Buffer   []byte
}

// Value is a single property value: either a plain string or a
// structured object (a photo with alt text, HTML content).
type Value struct {
	Plain      string
	Structured *Structured
}

// Structured is the object form of a property value.
type Structured struct {
	Value string `json:"value,omitempty"`
	Alt   string `json:"alt,omitempty"`
	HTML  string `json:"html,omitempty"`
}

// Plain wraps a plain string value.
func Plain(s string) Value {
	return Value{Plain: s}
}

// String returns the scalar form of the value: the plain string, or the
// structured value field.
func (v Value) String() string {
	if v.Structured != nil {
		return v.Structured.Value
	}
	return v.Plain
}

// UnmarshalJSON accepts both value shapes micropub allows: a bare JSON
// scalar or an object with value/alt/html members.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Plain: s}
		return nil
	}

	var obj Structured
	if err := json.Unmarshal(data, &obj); err == nil {
		*v = Value{Structured: &obj}
		return nil
	}

	// Numbers and booleans stringify.
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Value{Plain: fmt.Sprint(raw)}
	return nil
}

// Values returns the value list for a property, nil if unset.
func (d *Document) Values(name string) []Value {
	if d.Properties == nil {
		return nil
	}
	return d.Properties[name]
}

// Has reports whether a property is set with at least one value.
func (d *Document) Has(name string) bool {
	return len(d.Values(name)) > 0
}

// First returns the scalar form of a property's first value, or "" if
// the property is unset.
func (d *Document) First(name string) string {
	vals := d.Values(name)
	if len(vals) == 0 {
		return ""
	}
	return vals[0].String()
}

// Command returns the first value of a protocol-level mp-* command, or
// "" if unset.
func (d *Document) Command(name string) string {
	if len(d.Commands[name]) == 0 {
		return ""
	}
	return d.Commands[name][0]
}
