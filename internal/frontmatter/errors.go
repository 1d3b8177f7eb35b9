package frontmatter

import "fmt"

// FormatError reports a missing or malformed marker structure. The document
// was not touched.
type FormatError struct {
	Reason string
}

// Error returns the format failure description.
func (e *FormatError) Error() string {
	return "frontmatter: " + e.Reason
}

// ParseError reports that the block's text failed YAML deserialization. The
// document was not touched.
type ParseError struct {
	Err error
}

// Error returns the parse failure description.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse frontmatter: %v", e.Err)
}

// Unwrap returns the underlying YAML error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports that the block deserialized to something other than a
// mapping. The document was not touched.
type SchemaError struct {
	Reason string
}

// Error returns the schema failure description.
func (e *SchemaError) Error() string {
	return "frontmatter: " + e.Reason
}
