// Package schema models an inventory's custom field definition and its
// mapping onto the fixed physical storage slots every item row carries
// (3 string, 3 integer, 3 boolean columns).
package schema

// Field type identifiers used by the add/remove operations and the HTTP API.
const (
	FieldSingleLineText = "single_line_text"
	FieldMultiLineText  = "multi_line_text"
	FieldNumeric        = "numeric"
	FieldBoolean        = "boolean"
	FieldDocumentImage  = "document_image"
)

// CustomFieldSchema groups field names by type. Names are unique within the
// whole schema's bucket; insertion order is load-bearing because slot
// assignment is positional (see ToFixedSlots).
type CustomFieldSchema struct {
	SingleLineText []string `json:"single_line_text"`
	MultiLineText  []string `json:"multi_line_text"`
	Numeric        []string `json:"numeric"`
	Boolean        []string `json:"boolean"`
	DocumentImage  []string `json:"document_image"`
}

// AddField appends name to the bucket for fieldType. Duplicates (exact,
// case-sensitive) and unknown field types are silent no-ops.
func (s CustomFieldSchema) AddField(fieldType, name string) CustomFieldSchema {
	bucket := s.bucket(fieldType)
	if bucket == nil {
		return s
	}
	for _, existing := range *bucket {
		if existing == name {
			return s
		}
	}
	*bucket = append(append([]string(nil), *bucket...), name)
	return s
}

// RemoveField removes the first exact match of name from the bucket for
// fieldType. Missing names and unknown field types are silent no-ops.
//
// Removing a field while items exist shifts the positional slot assignment
// of every later field of the same pool; callers are expected to re-derive
// the slot layout with ToFixedSlots and surface the change.
func (s CustomFieldSchema) RemoveField(fieldType, name string) CustomFieldSchema {
	bucket := s.bucket(fieldType)
	if bucket == nil {
		return s
	}
	for i, existing := range *bucket {
		if existing == name {
			next := append([]string(nil), (*bucket)[:i]...)
			*bucket = append(next, (*bucket)[i+1:]...)
			return s
		}
	}
	return s
}

// IsDocumentImage reports whether name is declared as a document/image
// field. Document fields share the string slot pool but render as link
// references instead of plain text.
func (s CustomFieldSchema) IsDocumentImage(name string) bool {
	for _, n := range s.DocumentImage {
		if n == name {
			return true
		}
	}
	return false
}

// bucket returns a pointer to the list for fieldType, or nil for unknown
// types. The receiver is a value, so mutations through the pointer stay
// local to the copy the caller gets back.
func (s *CustomFieldSchema) bucket(fieldType string) *[]string {
	switch fieldType {
	case FieldSingleLineText:
		return &s.SingleLineText
	case FieldMultiLineText:
		return &s.MultiLineText
	case FieldNumeric:
		return &s.Numeric
	case FieldBoolean:
		return &s.Boolean
	case FieldDocumentImage:
		return &s.DocumentImage
	default:
		return nil
	}
}
