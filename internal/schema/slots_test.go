package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotNames(slots [SlotsPerType]Slot) []string {
	out := make([]string, 0, SlotsPerType)
	for _, s := range slots {
		if s.Enabled {
			out = append(out, *s.Name)
		}
	}
	return out
}

func TestToFixedSlotsTruncation(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"a", "b", "c", "d"},
	}

	set := ToFixedSlots(s)

	assert.Equal(t, []string{"a", "b", "c"}, slotNames(set.String), "fourth entry is dropped silently")
	assert.False(t, set.Int[0].Enabled)
	assert.False(t, set.Bool[0].Enabled)
}

func TestToFixedSlotsStringPoolOrder(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"title"},
		MultiLineText:  []string{"notes"},
		DocumentImage:  []string{"cover", "scan"},
	}

	set := ToFixedSlots(s)

	// single-line, then multi-line, then document/image; "scan" falls off.
	assert.Equal(t, []string{"title", "notes", "cover"}, slotNames(set.String))
}

func TestToFixedSlotsTypeIsolation(t *testing.T) {
	s := CustomFieldSchema{
		DocumentImage: []string{"cover"},
		Numeric:       []string{"year"},
		Boolean:       []string{"read"},
	}

	set := ToFixedSlots(s)

	assert.Equal(t, []string{"cover"}, slotNames(set.String), "document fields use the string pool")
	assert.Equal(t, []string{"year"}, slotNames(set.Int))
	assert.Equal(t, []string{"read"}, slotNames(set.Bool))
}

func TestToFixedSlotsDisabledSlots(t *testing.T) {
	set := ToFixedSlots(CustomFieldSchema{Numeric: []string{"year"}})

	require.True(t, set.Int[0].Enabled)
	assert.Equal(t, "year", *set.Int[0].Name)

	assert.False(t, set.Int[1].Enabled)
	assert.Nil(t, set.Int[1].Name)
	assert.False(t, set.Int[2].Enabled)
	assert.Nil(t, set.Int[2].Name)
}

func TestToFixedSlotsDeterministic(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"a", "b"},
		MultiLineText:  []string{"c"},
		Numeric:        []string{"n1", "n2"},
	}

	first := ToFixedSlots(s)
	for i := 0; i < 5; i++ {
		assert.Equal(t, slotNames(first.String), slotNames(ToFixedSlots(s).String))
		assert.Equal(t, slotNames(first.Int), slotNames(ToFixedSlots(s).Int))
	}
}

func TestMapFieldValues(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"Author"},
		Numeric:        []string{"Year"},
		Boolean:        []string{"Read"},
	}

	v := MapFieldValues(s, map[string]interface{}{
		"Author": "Tolkien",
		"Year":   float64(1954), // JSON numbers decode as float64
		"Read":   true,
	})

	require.NotNil(t, v.String[0])
	assert.Equal(t, "Tolkien", *v.String[0])
	require.NotNil(t, v.Int[0])
	assert.Equal(t, int64(1954), *v.Int[0])
	require.NotNil(t, v.Bool[0])
	assert.True(t, *v.Bool[0])

	assert.Nil(t, v.String[1])
	assert.Nil(t, v.Int[1])
	assert.Nil(t, v.Bool[1])
}

func TestMapFieldValuesMissingAndNil(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"Author"},
		Numeric:        []string{"Year"},
	}

	v := MapFieldValues(s, map[string]interface{}{
		"Year": nil,
	})

	assert.Nil(t, v.String[0], "missing value stays unset")
	assert.Nil(t, v.Int[0], "explicit null stays unset")
}

func TestMapFieldValuesNumericCoercion(t *testing.T) {
	s := CustomFieldSchema{Numeric: []string{"a", "b", "c"}}

	v := MapFieldValues(s, map[string]interface{}{
		"a": "1954",
		"b": "",
		"c": "not a number",
	})

	require.NotNil(t, v.Int[0])
	assert.Equal(t, int64(1954), *v.Int[0])
	assert.Nil(t, v.Int[1], "empty string maps to null")
	assert.Nil(t, v.Int[2], "unparseable maps to null, never fails")
}

func TestMapFieldValuesZeroIsNotDropped(t *testing.T) {
	s := CustomFieldSchema{Numeric: []string{"count"}, Boolean: []string{"done"}}

	v := MapFieldValues(s, map[string]interface{}{
		"count": float64(0),
		"done":  false,
	})

	require.NotNil(t, v.Int[0], "numeric zero is a value, not an absence")
	assert.Equal(t, int64(0), *v.Int[0])
	require.NotNil(t, v.Bool[0])
	assert.False(t, *v.Bool[0])
}

func TestMapFieldValuesTruthiness(t *testing.T) {
	s := CustomFieldSchema{Boolean: []string{"a", "b", "c"}}

	v := MapFieldValues(s, map[string]interface{}{
		"a": float64(1),
		"b": "",
		"c": "yes",
	})

	require.NotNil(t, v.Bool[0])
	assert.True(t, *v.Bool[0])
	require.NotNil(t, v.Bool[1])
	assert.False(t, *v.Bool[1], "empty string is falsy")
	require.NotNil(t, v.Bool[2])
	assert.True(t, *v.Bool[2])
}

func TestMapFieldValuesPositionalFallback(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"Author"},
		Numeric:        []string{"Year"},
	}

	v := MapFieldValues(s, map[string]interface{}{
		"string1": "Orwell",
		"int1":    float64(1949),
	})

	require.NotNil(t, v.String[0])
	assert.Equal(t, "Orwell", *v.String[0])
	require.NotNil(t, v.Int[0])
	assert.Equal(t, int64(1949), *v.Int[0])
}

func TestDisplayValue(t *testing.T) {
	s := CustomFieldSchema{
		SingleLineText: []string{"Title"},
		DocumentImage:  []string{"Cover"},
		Boolean:        []string{"Read"},
		Numeric:        []string{"Year"},
	}

	t.Run("booleans render labeled", func(t *testing.T) {
		assert.Equal(t, "Yes", DisplayValue(s, "Read", true))
		assert.Equal(t, "No", DisplayValue(s, "Read", false))
	})

	t.Run("document fields render as link references", func(t *testing.T) {
		assert.Equal(t, "[file] cover.png", DisplayValue(s, "Cover", "cover.png"))
		assert.Equal(t, "plain.png", DisplayValue(s, "Title", "plain.png"))
	})

	t.Run("zero renders as text, not empty", func(t *testing.T) {
		assert.Equal(t, "0", DisplayValue(s, "Year", int64(0)))
	})

	t.Run("nil renders empty", func(t *testing.T) {
		assert.Equal(t, "", DisplayValue(s, "Year", nil))
	})
}

func TestRoundTripThroughSlots(t *testing.T) {
	s := CustomFieldSchema{
		Boolean: []string{"Read"},
		Numeric: []string{"Year"},
	}

	v := MapFieldValues(s, map[string]interface{}{
		"Read": true,
		"Year": float64(0),
	})

	assert.Equal(t, "Yes", DisplayValue(s, "Read", v.Bool[0]))
	assert.Equal(t, "0", DisplayValue(s, "Year", v.Int[0]))
}
