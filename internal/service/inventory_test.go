package service

import (
	"context"
	"testing"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetInventory(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)
	require.NotNil(t, svc)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "my shelf", bookTemplate(), bookSchema())
	require.NoError(t, err)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, int64(1), inv.Version)

	loaded, err := svc.GetInventory(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", loaded.Title)
	assert.Equal(t, []string{"Author"}, loaded.Schema.SingleLineText)
}

func TestUpdateInventoryTemplate(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", bookTemplate(), schema.CustomFieldSchema{})
	require.NoError(t, err)

	newTemplate := []idformat.Element{{Kind: idformat.KindFixedText, Value: "LIB-"}}
	updated, err := svc.UpdateInventory(context.Background(), inv.ID, inv.Version, "Library", "", newTemplate)
	require.NoError(t, err)

	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "LIB-", updated.IDFormat[0].Value)
}

func TestUpdateInventoryVersionConflict(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", nil, schema.CustomFieldSchema{})
	require.NoError(t, err)

	_, err = svc.UpdateInventory(context.Background(), inv.ID, inv.Version+1, "Stale", "", nil)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestAddFieldDerivesSlots(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", nil, schema.CustomFieldSchema{})
	require.NoError(t, err)

	inv, slots, err := svc.AddField(context.Background(), inv.ID, inv.Version, schema.FieldSingleLineText, "Author")
	require.NoError(t, err)
	require.True(t, slots.String[0].Enabled)
	assert.Equal(t, "Author", *slots.String[0].Name)

	inv, slots, err = svc.AddField(context.Background(), inv.ID, inv.Version, schema.FieldNumeric, "Year")
	require.NoError(t, err)
	require.True(t, slots.Int[0].Enabled)
	assert.Equal(t, "Year", *slots.Int[0].Name)
	assert.Equal(t, int64(3), inv.Version)
}

func TestRemoveFieldShiftsSlots(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)

	var fieldSchema schema.CustomFieldSchema
	fieldSchema = fieldSchema.AddField(schema.FieldNumeric, "Year")
	fieldSchema = fieldSchema.AddField(schema.FieldNumeric, "Pages")

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", nil, fieldSchema)
	require.NoError(t, err)

	_, slots, err := svc.RemoveField(context.Background(), inv.ID, inv.Version, schema.FieldNumeric, "Year")
	require.NoError(t, err)

	// Pages moved from slot 2 to slot 1: the caller sees the shift.
	require.True(t, slots.Int[0].Enabled)
	assert.Equal(t, "Pages", *slots.Int[0].Name)
	assert.False(t, slots.Int[1].Enabled)
}

func TestAddFieldBeyondCapacityStillStored(t *testing.T) {
	store := newMemStore()
	svc := NewInventoryService(store, nil)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", nil, schema.CustomFieldSchema{})
	require.NoError(t, err)

	names := []string{"a", "b", "c", "d"}
	var slots schema.FixedSlotSet
	for _, name := range names {
		inv, slots, err = svc.AddField(context.Background(), inv.ID, inv.Version, schema.FieldSingleLineText, name)
		require.NoError(t, err)
	}

	// The schema keeps all four names; only the slot layout truncates.
	assert.Equal(t, names, inv.Schema.SingleLineText)
	assert.Equal(t, "c", *slots.String[2].Name)
}

func TestSchemaMutationPublishesEvent(t *testing.T) {
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewInventoryService(store, pub)

	inv, err := svc.CreateInventory(context.Background(), "owner-1", "Books", "", nil, schema.CustomFieldSchema{})
	require.NoError(t, err)

	_, _, err = svc.AddField(context.Background(), inv.ID, inv.Version, schema.FieldBoolean, "Read")
	require.NoError(t, err)
	assert.Equal(t, []string{"schema_changed:" + inv.ID}, pub.events)
}
