package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddField(t *testing.T) {
	var s CustomFieldSchema

	s = s.AddField(FieldSingleLineText, "Author")
	s = s.AddField(FieldNumeric, "Year")
	s = s.AddField(FieldBoolean, "Read")

	assert.Equal(t, []string{"Author"}, s.SingleLineText)
	assert.Equal(t, []string{"Year"}, s.Numeric)
	assert.Equal(t, []string{"Read"}, s.Boolean)
}

func TestAddFieldDuplicateIsNoOp(t *testing.T) {
	var s CustomFieldSchema

	s = s.AddField(FieldSingleLineText, "Author")
	s = s.AddField(FieldSingleLineText, "Author")

	assert.Equal(t, []string{"Author"}, s.SingleLineText)
}

func TestAddFieldIsCaseSensitive(t *testing.T) {
	var s CustomFieldSchema

	s = s.AddField(FieldSingleLineText, "Author")
	s = s.AddField(FieldSingleLineText, "author")

	assert.Equal(t, []string{"Author", "author"}, s.SingleLineText)
}

func TestAddFieldUnknownTypeIsNoOp(t *testing.T) {
	var s CustomFieldSchema

	s = s.AddField("date", "Published")

	assert.Empty(t, s.SingleLineText)
	assert.Empty(t, s.Numeric)
}

func TestRemoveField(t *testing.T) {
	var s CustomFieldSchema
	s = s.AddField(FieldNumeric, "Year")
	s = s.AddField(FieldNumeric, "Pages")

	s = s.RemoveField(FieldNumeric, "Year")

	assert.Equal(t, []string{"Pages"}, s.Numeric)
}

func TestRemoveFieldMissingIsNoOp(t *testing.T) {
	var s CustomFieldSchema
	s = s.AddField(FieldNumeric, "Year")

	s = s.RemoveField(FieldNumeric, "Pages")
	s = s.RemoveField(FieldBoolean, "Year")

	assert.Equal(t, []string{"Year"}, s.Numeric)
}

func TestMutationsDoNotAliasOriginal(t *testing.T) {
	var base CustomFieldSchema
	base = base.AddField(FieldSingleLineText, "A")
	base = base.AddField(FieldSingleLineText, "B")

	_ = base.RemoveField(FieldSingleLineText, "A")
	added := base.AddField(FieldSingleLineText, "C")

	assert.Equal(t, []string{"A", "B"}, base.SingleLineText)
	assert.Equal(t, []string{"A", "B", "C"}, added.SingleLineText)
}

func TestIsDocumentImage(t *testing.T) {
	var s CustomFieldSchema
	s = s.AddField(FieldDocumentImage, "Cover")
	s = s.AddField(FieldSingleLineText, "Title")

	assert.True(t, s.IsDocumentImage("Cover"))
	assert.False(t, s.IsDocumentImage("Title"))
	assert.False(t, s.IsDocumentImage("Missing"))
}
