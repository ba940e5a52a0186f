package domain

import (
	"time"

	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/schema"
)

// Inventory is a user-defined collection: an ID template, a custom field
// schema and the items created under them. Existing items keep the IDs they
// were created with; template edits only affect new items.
type Inventory struct {
	ID          string                   `json:"id"`
	OwnerID     string                   `json:"owner_id"`
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	IDFormat    []idformat.Element       `json:"id_format"`
	Schema      schema.CustomFieldSchema `json:"field_schema"`
	Version     int64                    `json:"version"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// Item is a single record in an inventory. CustomID is unique per inventory
// and immutable after creation; edits may change slot values only.
type Item struct {
	ID          string    `json:"id"`
	InventoryID string    `json:"inventory_id"`
	CustomID    string    `json:"custom_id"`
	String1     *string   `json:"string1"`
	String2     *string   `json:"string2"`
	String3     *string   `json:"string3"`
	Int1        *int64    `json:"int1"`
	Int2        *int64    `json:"int2"`
	Int3        *int64    `json:"int3"`
	Bool1       *bool     `json:"bool1"`
	Bool2       *bool     `json:"bool2"`
	Bool3       *bool     `json:"bool3"`
	CreatedBy   string    `json:"created_by"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetSlots copies mapped slot values onto the item columns.
func (i *Item) SetSlots(v schema.SlotValues) {
	i.String1, i.String2, i.String3 = v.String[0], v.String[1], v.String[2]
	i.Int1, i.Int2, i.Int3 = v.Int[0], v.Int[1], v.Int[2]
	i.Bool1, i.Bool2, i.Bool3 = v.Bool[0], v.Bool[1], v.Bool[2]
}

// Slots returns the item columns as a slot value set.
func (i *Item) Slots() schema.SlotValues {
	return schema.SlotValues{
		String: [schema.SlotsPerType]*string{i.String1, i.String2, i.String3},
		Int:    [schema.SlotsPerType]*int64{i.Int1, i.Int2, i.Int3},
		Bool:   [schema.SlotsPerType]*bool{i.Bool1, i.Bool2, i.Bool3},
	}
}

// Comment is a discussion entry attached to an inventory.
type Comment struct {
	ID          string    `json:"id"`
	InventoryID string    `json:"inventory_id"`
	Author      string    `json:"author"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
}

// Account is a resolved API caller from the main users database.
type Account struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// Common errors
var (
	ErrNotFound        = &CustomError{Code: "NOT_FOUND", Message: "Resource not found"}
	ErrDuplicateID     = &CustomError{Code: "DUPLICATE_ID", Message: "Generated custom ID already exists in this inventory"}
	ErrVersionConflict = &CustomError{Code: "VERSION_CONFLICT", Message: "Record was modified by another request"}
)

// CustomError represents a custom error.
type CustomError struct {
	Code    string
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}
