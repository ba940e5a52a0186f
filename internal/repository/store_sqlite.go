package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invhub-rest-api/internal/domain"
	"invhub-rest-api/internal/idformat"
	"invhub-rest-api/internal/schema"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements InventoryRepository, ItemRepository and
// CommentRepository on a local SQLite file. Templates and schemas are stored
// as JSON columns on the inventory row; item slot values live in the nine
// fixed columns so the (inventory_id, custom_id) uniqueness constraint is
// enforced by the database, not just by the allocator's pre-check.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteDDL = `
CREATE TABLE IF NOT EXISTS inventories (
	id           TEXT PRIMARY KEY,
	owner_id     TEXT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	id_format    TEXT NOT NULL DEFAULT '[]',
	field_schema TEXT NOT NULL DEFAULT '{}',
	version      INTEGER NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventories_owner ON inventories(owner_id);

CREATE TABLE IF NOT EXISTS items (
	id           TEXT PRIMARY KEY,
	inventory_id TEXT NOT NULL REFERENCES inventories(id) ON DELETE CASCADE,
	custom_id    TEXT NOT NULL,
	string1      TEXT, string2 TEXT, string3 TEXT,
	int1         INTEGER, int2 INTEGER, int3 INTEGER,
	bool1        INTEGER, bool2 INTEGER, bool3 INTEGER,
	created_by   TEXT NOT NULL DEFAULT '',
	version      INTEGER NOT NULL DEFAULT 1,
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL,
	UNIQUE(inventory_id, custom_id)
);
CREATE INDEX IF NOT EXISTS idx_items_inventory ON items(inventory_id);

CREATE TABLE IF NOT EXISTS comments (
	id           TEXT PRIMARY KEY,
	inventory_id TEXT NOT NULL REFERENCES inventories(id) ON DELETE CASCADE,
	author       TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_inventory ON comments(inventory_id);
`

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// SQLite handles one writer at a time; serialize on the pool side.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	if _, err := db.Exec(sqliteDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateInventory inserts a new inventory row.
func (s *SQLiteStore) CreateInventory(ctx context.Context, inv *domain.Inventory) error {
	formatJSON, schemaJSON, err := marshalInventoryJSON(inv)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO inventories (id, owner_id, title, description, id_format, field_schema, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		inv.ID, inv.OwnerID, inv.Title, inv.Description,
		formatJSON, schemaJSON, inv.Version, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert inventory: %w", err)
	}
	return nil
}

// GetInventory loads one inventory by ID.
func (s *SQLiteStore) GetInventory(ctx context.Context, id string) (*domain.Inventory, error) {
	query := `
		SELECT id, owner_id, title, description, id_format, field_schema, version, created_at, updated_at
		FROM inventories WHERE id = ?`

	return scanInventory(s.db.QueryRowContext(ctx, query, id))
}

// ListInventories returns inventories, optionally filtered by owner.
func (s *SQLiteStore) ListInventories(ctx context.Context, ownerID string) ([]*domain.Inventory, error) {
	query := `
		SELECT id, owner_id, title, description, id_format, field_schema, version, created_at, updated_at
		FROM inventories`
	args := []interface{}{}
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer rows.Close()

	var out []*domain.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// UpdateInventory persists changes guarded by the optimistic version check.
func (s *SQLiteStore) UpdateInventory(ctx context.Context, inv *domain.Inventory, expectedVersion int64) error {
	formatJSON, schemaJSON, err := marshalInventoryJSON(inv)
	if err != nil {
		return err
	}

	query := `
		UPDATE inventories
		SET title = ?, description = ?, id_format = ?, field_schema = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	res, err := s.db.ExecContext(ctx, query,
		inv.Title, inv.Description, formatJSON, schemaJSON, time.Now().UTC(),
		inv.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or the version moved on.
		if _, err := s.GetInventory(ctx, inv.ID); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	inv.Version = expectedVersion + 1
	return nil
}

// DeleteInventory removes an inventory; items and comments cascade.
func (s *SQLiteStore) DeleteInventory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM inventories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory: %w", err)
	}
	return nil
}

// CountItems returns the number of items in an inventory. The allocator uses
// count+1 as the sequence ordinal for the next item.
func (s *SQLiteStore) CountItems(ctx context.Context, inventoryID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE inventory_id = ?`, inventoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// CustomIDExists is the allocator's advisory pre-check; the UNIQUE
// constraint on insert is the authoritative guard.
func (s *SQLiteStore) CustomIDExists(ctx context.Context, inventoryID, customID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE inventory_id = ? AND custom_id = ?`,
		inventoryID, customID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check custom id: %w", err)
	}
	return count > 0, nil
}

// InsertItem inserts an item row. A unique-constraint rejection on
// (inventory_id, custom_id) is reported as domain.ErrDuplicateID so the
// caller can prompt a resubmit instead of a generic failure.
func (s *SQLiteStore) InsertItem(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, inventory_id, custom_id,
			string1, string2, string3, int1, int2, int3, bool1, bool2, bool3,
			created_by, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.InventoryID, item.CustomID,
		item.String1, item.String2, item.String3,
		item.Int1, item.Int2, item.Int3,
		boolPtrToInt(item.Bool1), boolPtrToInt(item.Bool2), boolPtrToInt(item.Bool3),
		item.CreatedBy, item.Version, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateID
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// GetItem loads one item by record ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, itemSelect+` WHERE id = ?`, id))
}

// ListItems returns an inventory's items in creation order.
func (s *SQLiteStore) ListItems(ctx context.Context, inventoryID string) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		itemSelect+` WHERE inventory_id = ? ORDER BY created_at ASC`, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// UpdateItem persists slot-value edits. custom_id is never touched here.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *domain.Item, expectedVersion int64) error {
	query := `
		UPDATE items
		SET string1 = ?, string2 = ?, string3 = ?,
			int1 = ?, int2 = ?, int3 = ?,
			bool1 = ?, bool2 = ?, bool3 = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

	res, err := s.db.ExecContext(ctx, query,
		item.String1, item.String2, item.String3,
		item.Int1, item.Int2, item.Int3,
		boolPtrToInt(item.Bool1), boolPtrToInt(item.Bool2), boolPtrToInt(item.Bool3),
		time.Now().UTC(), item.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetItem(ctx, item.ID); err != nil {
			return err
		}
		return domain.ErrVersionConflict
	}
	item.Version = expectedVersion + 1
	return nil
}

// DeleteItem removes one item by record ID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// BatchInsertComments writes buffered comments in one transaction.
func (s *SQLiteStore) BatchInsertComments(ctx context.Context, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO comments (id, inventory_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range comments {
		if _, err := stmt.ExecContext(ctx, c.ID, c.InventoryID, c.Author, c.Body, c.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert comment %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// ListComments returns an inventory's persisted comments, oldest first.
func (s *SQLiteStore) ListComments(ctx context.Context, inventoryID string) ([]*domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, inventory_id, author, body, created_at FROM comments WHERE inventory_id = ? ORDER BY created_at ASC`,
		inventoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.InventoryID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Stats returns table counts for the admin dashboard.
func (s *SQLiteStore) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, 3)
	for _, table := range []string{"inventories", "items", "comments"} {
		var count int64
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}
	return stats, nil
}

const itemSelect = `
	SELECT id, inventory_id, custom_id,
		string1, string2, string3, int1, int2, int3, bool1, bool2, bool3,
		created_by, version, created_at, updated_at
	FROM items`

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInventory(row rowScanner) (*domain.Inventory, error) {
	var (
		inv        domain.Inventory
		formatJSON string
		schemaJSON string
	)
	err := row.Scan(
		&inv.ID, &inv.OwnerID, &inv.Title, &inv.Description,
		&formatJSON, &schemaJSON, &inv.Version, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan inventory: %w", err)
	}

	if err := json.Unmarshal([]byte(formatJSON), &inv.IDFormat); err != nil {
		return nil, fmt.Errorf("failed to decode id_format: %w", err)
	}
	if err := json.Unmarshal([]byte(schemaJSON), &inv.Schema); err != nil {
		return nil, fmt.Errorf("failed to decode field_schema: %w", err)
	}
	return &inv, nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item                domain.Item
		bool1, bool2, bool3 sql.NullInt64
	)
	err := row.Scan(
		&item.ID, &item.InventoryID, &item.CustomID,
		&item.String1, &item.String2, &item.String3,
		&item.Int1, &item.Int2, &item.Int3,
		&bool1, &bool2, &bool3,
		&item.CreatedBy, &item.Version, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	item.Bool1 = intToBoolPtr(bool1)
	item.Bool2 = intToBoolPtr(bool2)
	item.Bool3 = intToBoolPtr(bool3)
	return &item, nil
}

func marshalInventoryJSON(inv *domain.Inventory) (string, string, error) {
	elements := inv.IDFormat
	if elements == nil {
		elements = []idformat.Element{}
	}
	formatJSON, err := json.Marshal(elements)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode id_format: %w", err)
	}
	schemaJSON, err := json.Marshal(normalizeSchema(inv.Schema))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode field_schema: %w", err)
	}
	return string(formatJSON), string(schemaJSON), nil
}

// normalizeSchema replaces nil buckets with empty slices so the stored JSON
// round-trips as [] instead of null.
func normalizeSchema(s schema.CustomFieldSchema) schema.CustomFieldSchema {
	if s.SingleLineText == nil {
		s.SingleLineText = []string{}
	}
	if s.MultiLineText == nil {
		s.MultiLineText = []string{}
	}
	if s.Numeric == nil {
		s.Numeric = []string{}
	}
	if s.Boolean == nil {
		s.Boolean = []string{}
	}
	if s.DocumentImage == nil {
		s.DocumentImage = []string{}
	}
	return s
}

func boolPtrToInt(b *bool) interface{} {
	if b == nil {
		return nil
	}
	if *b {
		return int64(1)
	}
	return int64(0)
}

func intToBoolPtr(n sql.NullInt64) *bool {
	if !n.Valid {
		return nil
	}
	b := n.Int64 != 0
	return &b
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
