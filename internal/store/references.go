package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/orodjarna/internal/codegen"
	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

type referenceTable struct {
	name   string
	prefix string
}

var referenceTables = map[model.ReferenceKind]referenceTable{
	model.RefCategory:   {"categories", codegen.PrefixCategory},
	model.RefCompany:    {"companies", codegen.PrefixCompany},
	model.RefContractor: {"contractors", codegen.PrefixContractor},
	model.RefMachine:    {"machines", codegen.PrefixMachine},
	model.RefLocation:   {"locations", codegen.PrefixLocation},
}

func tableFor(kind model.ReferenceKind) (referenceTable, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return referenceTable{}, model.NewValidationError("kind", fmt.Sprintf("unknown reference kind %q", kind))
	}
	return t, nil
}

// CreateReference creates a reference row with the next code for its kind.
func CreateReference(ctx context.Context, q db.Querier, kind model.ReferenceKind, name string) (*model.Reference, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	n, err := highestCodeNumber(ctx, q, t)
	if err != nil {
		return nil, err
	}

	return insertReference(ctx, q, kind, t, codegen.Next(t.prefix, n), name)
}

// highestCodeNumber returns the largest number used by a code of the table's
// prefix. Imported codes may skip ahead of the row count.
func highestCodeNumber(ctx context.Context, q db.Querier, t referenceTable) (int, error) {
	query, args, err := sq.Select().
		Column(sq.Expr("COALESCE(MAX(CAST(SUBSTR(code, ?) AS INTEGER)), 0)", len(t.prefix)+2)).
		From(t.name).
		Where(sq.Like{"code": t.prefix + "-%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building code query: %w", err)
	}

	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("reading highest %s code: %w", t.name, err)
	}
	return n, nil
}

func insertReference(ctx context.Context, q db.Querier, kind model.ReferenceKind, t referenceTable, code, name string) (*model.Reference, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO `+t.name+` (code, name) VALUES (?, ?)`, code, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", kind, db.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting %s id: %w", kind, err)
	}

	return GetReference(ctx, q, kind, id)
}

// UpsertReference renames the row with code, or creates it when the code is
// new. An empty code always creates a row with a generated code.
func UpsertReference(ctx context.Context, q db.Querier, kind model.ReferenceKind, code, name string) (*model.Reference, error) {
	if code == "" {
		return CreateReference(ctx, q, kind, name)
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	prefix, _, ok := codegen.Parse(code)
	if !ok {
		return nil, model.NewValidationError("code", fmt.Sprintf("malformed code %q", code))
	}
	if prefix != t.prefix {
		return nil, model.NewValidationError("code", fmt.Sprintf("%s codes start with %s-", kind, t.prefix))
	}

	result, err := q.ExecContext(ctx, `UPDATE `+t.name+` SET name = ? WHERE code = ?`, name, code)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", kind, err)
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		return GetReferenceByCode(ctx, q, kind, code)
	}

	return insertReference(ctx, q, kind, t, code, name)
}

func scanReference(s rowScanner, kind model.ReferenceKind) (*model.Reference, error) {
	r := &model.Reference{Kind: kind}
	err := s.Scan(&r.ID, &r.Code, &r.Name, &r.IsActive, &r.CreatedAt)
	return r, err
}

func getReferenceWhere(ctx context.Context, q db.Querier, kind model.ReferenceKind, where string, arg any) (*model.Reference, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	r, err := scanReference(q.QueryRowContext(ctx,
		`SELECT id, code, name, is_active, created_at FROM `+t.name+` WHERE `+where, arg,
	), kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", kind, err)
	}
	return r, nil
}

// GetReference returns a reference row by ID.
func GetReference(ctx context.Context, q db.Querier, kind model.ReferenceKind, id int64) (*model.Reference, error) {
	return getReferenceWhere(ctx, q, kind, `id = ?`, id)
}

// GetReferenceByCode returns a reference row by its code.
func GetReferenceByCode(ctx context.Context, q db.Querier, kind model.ReferenceKind, code string) (*model.Reference, error) {
	return getReferenceWhere(ctx, q, kind, `code = ?`, code)
}

// ListReferences returns every row of one kind ordered by code.
func ListReferences(ctx context.Context, q db.Querier, kind model.ReferenceKind) ([]model.Reference, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, code, name, is_active, created_at FROM `+t.name+` ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name, err)
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		r, err := scanReference(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", kind, err)
		}
		refs = append(refs, *r)
	}
	return refs, rows.Err()
}

// SetReferenceActive toggles the soft-deactivation flag.
func SetReferenceActive(ctx context.Context, q db.Querier, kind model.ReferenceKind, id int64, active bool) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}

	result, err := q.ExecContext(ctx,
		`UPDATE `+t.name+` SET is_active = ? WHERE id = ?`, boolInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("setting %s active: %w", kind, err)
	}
	return requireRow(result, fmt.Errorf("%s %d: %w", kind, id, model.ErrNotFound))
}

// RequireActiveContext checks that every reference set in c exists and is
// active. A missing row is ErrNotFound, an inactive one ErrInvalidState.
func RequireActiveContext(ctx context.Context, q db.Querier, c model.Context) error {
	refs := []struct {
		kind model.ReferenceKind
		id   *int64
	}{
		{model.RefCompany, c.CompanyID},
		{model.RefContractor, c.ContractorID},
		{model.RefMachine, c.MachineID},
		{model.RefLocation, c.LocationID},
	}

	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		r, err := GetReference(ctx, q, ref.kind, *ref.id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%s %d: %w", ref.kind, *ref.id, model.ErrNotFound)
		}
		if !r.IsActive {
			return fmt.Errorf("%s %s is inactive: %w", ref.kind, r.Code, model.ErrInvalidState)
		}
	}
	return nil
}
