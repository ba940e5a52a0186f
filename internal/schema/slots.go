package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotsPerType is the fixed physical capacity per value type. Schema entries
// beyond this are dropped silently; truncation is the documented policy, not
// an error.
const SlotsPerType = 3

// Slot is one physical storage column binding. Name is nil when the slot is
// unused.
type Slot struct {
	Enabled bool    `json:"enabled"`
	Name    *string `json:"name"`
}

// FixedSlotSet is the physical layout derived from a schema: 3 string slots
// (shared by single-line, multi-line and document/image fields), 3 integer
// slots and 3 boolean slots. Index 0 corresponds to column 1.
type FixedSlotSet struct {
	String [SlotsPerType]Slot `json:"string"`
	Int    [SlotsPerType]Slot `json:"int"`
	Bool   [SlotsPerType]Slot `json:"bool"`
}

// SlotValues holds the per-item column values in slot order. Nil means the
// slot is unset for the item.
type SlotValues struct {
	String [SlotsPerType]*string
	Int    [SlotsPerType]*int64
	Bool   [SlotsPerType]*bool
}

// ToFixedSlots derives the physical layout from a schema. String candidates
// are single-line, then multi-line, then document/image names, in bucket
// order; the first three win. Numeric and boolean buckets bind independently.
//
// The derivation is recomputed from scratch on every call rather than
// patched incrementally, so the layout can never drift from the schema.
// Item rows reference slots positionally: reordering or removing schema
// entries after items exist reassigns what column N means for old rows.
func ToFixedSlots(s CustomFieldSchema) FixedSlotSet {
	var set FixedSlotSet

	stringCandidates := make([]string, 0, len(s.SingleLineText)+len(s.MultiLineText)+len(s.DocumentImage))
	stringCandidates = append(stringCandidates, s.SingleLineText...)
	stringCandidates = append(stringCandidates, s.MultiLineText...)
	stringCandidates = append(stringCandidates, s.DocumentImage...)

	bind(&set.String, stringCandidates)
	bind(&set.Int, s.Numeric)
	bind(&set.Bool, s.Boolean)

	return set
}

func bind(slots *[SlotsPerType]Slot, names []string) {
	for i := 0; i < SlotsPerType && i < len(names); i++ {
		name := names[i]
		slots[i] = Slot{Enabled: true, Name: &name}
	}
}

// MapFieldValues maps a field-name-keyed value map onto slot values for the
// layout derived from s. Lookup is by exact field name first, then by the
// canonical positional key ("string1".."string3", "int1".."int3",
// "bool1".."bool3"). Missing values leave the slot nil; nothing here fails.
func MapFieldValues(s CustomFieldSchema, values map[string]interface{}) SlotValues {
	set := ToFixedSlots(s)
	var out SlotValues

	for i, slot := range set.String {
		if v, ok := lookup(values, slot, "string", i); ok {
			out.String[i] = coerceString(v)
		}
	}
	for i, slot := range set.Int {
		if v, ok := lookup(values, slot, "int", i); ok {
			out.Int[i] = coerceInt(v)
		}
	}
	for i, slot := range set.Bool {
		if v, ok := lookup(values, slot, "bool", i); ok {
			out.Bool[i] = coerceBool(v)
		}
	}

	return out
}

func lookup(values map[string]interface{}, slot Slot, pool string, index int) (interface{}, bool) {
	if !slot.Enabled {
		return nil, false
	}
	if v, ok := values[*slot.Name]; ok {
		return v, true
	}
	if v, ok := values[pool+strconv.Itoa(index+1)]; ok {
		return v, true
	}
	return nil, false
}

func coerceString(v interface{}) *string {
	if v == nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	default:
		s = fmt.Sprintf("%v", t)
	}
	return &s
}

// coerceInt mirrors a loose Number(...) conversion: empty string and nil map
// to unset, unparseable strings map to unset rather than failing the item.
func coerceInt(v interface{}) *int64 {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		n := int64(t)
		return &n
	case int64:
		return &t
	case float64:
		n := int64(t)
		return &n
	case bool:
		var n int64
		if t {
			n = 1
		}
		return &n
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return nil
		}
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return &n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	default:
		return nil
	}
}

// coerceBool passes booleans through and falls back to truthiness for
// everything else: zero numbers, empty strings and nil are false.
func coerceBool(v interface{}) *bool {
	var b bool
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		b = t
	case float64:
		b = t != 0
	case int:
		b = t != 0
	case int64:
		b = t != 0
	case string:
		b = t != ""
	default:
		b = true
	}
	return &b
}

// DisplayValue renders a slot value for UI tables. Booleans render as
// Yes/No, document/image fields render as a link reference, numbers and
// strings pass through as text. A nil value renders empty.
func DisplayValue(s CustomFieldSchema, fieldName string, value interface{}) string {
	if value == nil {
		return ""
	}
	switch t := value.(type) {
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case *bool:
		if t == nil {
			return ""
		}
		return DisplayValue(s, fieldName, *t)
	case string:
		if s.IsDocumentImage(fieldName) {
			return "[file] " + t
		}
		return t
	case *string:
		if t == nil {
			return ""
		}
		return DisplayValue(s, fieldName, *t)
	case *int64:
		if t == nil {
			return ""
		}
		return strconv.FormatInt(*t, 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}
