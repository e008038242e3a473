// Package post defines the blog-post record and how request payloads are
// turned into one.
package post

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode"
)

// Post is a blog post. It carries no identifier: identity is the key under
// which a store holds it.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func repr(s string) string {
	const max = 11
	for i, r := range s {
		if !unicode.IsPrint(r) {
			return repr(fmt.Sprintf("%x", s))
		}
		if i > max {
			return s[:i] + "..."
		}
	}
	return s
}

// String implements fmt.Stringer. Title and content are clipped, so that
// posts can be logged without flooding the log.
func (p Post) String() string {
	return fmt.Sprintf("title=%s content=%s", repr(p.Title), repr(p.Content))
}

// ValidationError reports a payload that does not match the Post schema.
// Field is "body" when the payload is not a JSON object at all.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Parse reads a JSON object from r and validates it against the Post schema:
// both "title" and "content" must be present and be strings. Other fields are
// ignored. Anything but whitespace after the object makes the payload invalid.
// Any mismatch is reported as a *ValidationError.
func Parse(r io.Reader) (Post, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&fields); err != nil {
		return Post{}, &ValidationError{Field: "body", Reason: "expecting a JSON object"}
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); err != io.EOF {
		return Post{}, &ValidationError{Field: "body", Reason: "expecting a single JSON object"}
	}
	if fields == nil {
		// The literal null decodes without error.
		return Post{}, &ValidationError{Field: "body", Reason: "expecting a JSON object"}
	}
	var p Post
	if err := stringField(fields, "title", &p.Title); err != nil {
		return Post{}, err
	}
	if err := stringField(fields, "content", &p.Content); err != nil {
		return Post{}, err
	}
	return p, nil
}

func stringField(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok {
		return &ValidationError{Field: name, Reason: "field required"}
	}
	if string(raw) == "null" {
		return &ValidationError{Field: name, Reason: "must be a string"}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Field: name, Reason: "must be a string"}
	}
	return nil
}
