package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

// CreateItemParams holds the fields of a new item.
type CreateItemParams struct {
	Name         string
	SerialNumber *string
	CategoryID   *int64
	ImagePath    *string
	Status       model.ItemStatus // defaults to AVAILABLE
}

// CreateItem creates a new item.
func CreateItem(ctx context.Context, q db.Querier, p CreateItemParams) (*model.Item, error) {
	status := p.Status
	if status == "" {
		status = model.ItemStatusAvailable
	}
	if status == model.ItemStatusIssued || !status.Valid() {
		return nil, model.NewValidationError("status", "must be AVAILABLE or MISSING")
	}

	serial := normalizeSerial(p.SerialNumber)

	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, serial_number, category_id, image_path, status) VALUES (?, ?, ?, ?, ?)`,
		p.Name, serial, p.CategoryID, p.ImagePath, status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", db.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, q, id)
}

// normalizeSerial trims a serial number and maps a blank one to NULL, so
// items without a serial never collide on the unique index.
func normalizeSerial(serial *string) *string {
	if serial == nil {
		return nil
	}
	s := strings.TrimSpace(*serial)
	if s == "" {
		return nil
	}
	return &s
}

func itemsQuery() sq.SelectBuilder {
	return sq.Select(
		"i.id", "i.name", "i.serial_number", "i.category_id", "i.image_path",
		"i.status", "i.is_active", "i.created_at", "i.updated_at",
		"COALESCE(c.name, '')",
	).
		From("items i").
		LeftJoin("categories c ON c.id = i.category_id")
}

func scanItem(s rowScanner) (*model.Item, error) {
	item := &model.Item{}
	err := s.Scan(&item.ID, &item.Name, &item.SerialNumber, &item.CategoryID, &item.ImagePath,
		&item.Status, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
		&item.CategoryName)
	return item, err
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, q db.Querier, id int64) (*model.Item, error) {
	query, args, err := itemsQuery().Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	item, err := scanItem(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// findItems lists items matching pred, ordered by name then id.
func findItems(ctx context.Context, q db.Querier, pred sq.Sqlizer) ([]model.Item, error) {
	b := itemsQuery().OrderBy("i.name ASC", "i.id ASC")
	if pred != nil {
		b = b.Where(pred)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building item query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindAvailableItems returns active items that can be issued right now.
func FindAvailableItems(ctx context.Context, q db.Querier) ([]model.Item, error) {
	return findItems(ctx, q, sq.Eq{"i.status": model.ItemStatusAvailable, "i.is_active": 1})
}

// FindItemsByStatus returns all items with the given status, active or not.
func FindItemsByStatus(ctx context.Context, q db.Querier, status model.ItemStatus) ([]model.Item, error) {
	if !status.Valid() {
		return nil, model.NewValidationError("status", "unknown item status")
	}
	return findItems(ctx, q, sq.Eq{"i.status": status})
}

// FindActiveItems returns all items that have not been deactivated.
func FindActiveItems(ctx context.Context, q db.Querier) ([]model.Item, error) {
	return findItems(ctx, q, sq.Eq{"i.is_active": 1})
}

// SetItemStatus writes status unconditionally. Legal transitions are the
// caller's concern.
func SetItemStatus(ctx context.Context, q db.Querier, id int64, status model.ItemStatus) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", db.ClassifyError(err))
	}
	return requireRow(result, fmt.Errorf("item %d: %w", id, model.ErrNotFound))
}

// CompareAndSetItemStatus moves the item from one status to another only if
// it is still in from. Losing the race yields ErrConflict.
func CompareAndSetItemStatus(ctx context.Context, q db.Querier, id int64, from, to model.ItemStatus) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("setting item status: %w", db.ClassifyError(err))
	}
	return requireRow(result, fmt.Errorf("item %d is no longer %s: %w", id, from, model.ErrConflict))
}

// SetItemActive toggles the soft-deactivation flag.
func SetItemActive(ctx context.Context, q db.Querier, id int64, active bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("setting item active: %w", err)
	}
	return requireRow(result, fmt.Errorf("item %d: %w", id, model.ErrNotFound))
}

// SetItemImage stores the path returned by the image store.
func SetItemImage(ctx context.Context, q db.Querier, id int64, path string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE items SET image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		path, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return requireRow(result, fmt.Errorf("item %d: %w", id, model.ErrNotFound))
}

// SerialNumberExists reports whether any item carries serial.
func SerialNumberExists(ctx context.Context, q db.Querier, serial string) (bool, error) {
	found, err := exists(ctx, q, sq.Select("1").From("items").Where(sq.Eq{"serial_number": serial}))
	if err != nil {
		return false, fmt.Errorf("checking serial number: %w", err)
	}
	return found, nil
}

// requireRow returns notFound when result touched no rows.
func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
