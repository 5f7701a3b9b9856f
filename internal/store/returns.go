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

// CreateReturnParams holds the fields of a new return.
type CreateReturnParams struct {
	ReturnCode string
	Provenance model.Provenance
	Condition  model.Condition
	ReturnedBy int64
	ImagePath  string
	ReceivedBy string
	Remarks    string
	Context    model.Context
}

// CreateReturn inserts a return. The provenance must name exactly one of an
// issue or an item; the table's CHECK constraint backs this up.
func CreateReturn(ctx context.Context, q db.Querier, p CreateReturnParams) (*model.Return, error) {
	if !p.Provenance.Valid() {
		return nil, model.NewValidationError("provenance", "exactly one of issue or item is required")
	}
	issueID, itemID := p.Provenance.Columns()

	result, err := q.ExecContext(ctx,
		`INSERT INTO returns (return_code, issue_id, item_id, return_condition, returned_by, image_path,
		                      received_by, remarks, company_id, contractor_id, machine_id, location_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ReturnCode, issueID, itemID, p.Condition, p.ReturnedBy, p.ImagePath,
		p.ReceivedBy, p.Remarks,
		p.Context.CompanyID, p.Context.ContractorID, p.Context.MachineID, p.Context.LocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating return: %w", db.ClassifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting return id: %w", err)
	}

	return GetReturn(ctx, q, id)
}

// returnsQuery selects hydrated returns. Context columns fall back from the
// closed issue to the return itself, so both provenances filter the same way.
func returnsQuery() sq.SelectBuilder {
	return sq.Select(
		"r.id", "r.return_code", "r.issue_id", "r.item_id", "r.return_condition", "r.returned_by",
		"r.image_path", "r.received_by", "r.remarks",
		colCompany, colContractor, colMachine, colLocation,
		"r.is_active", "r.created_at",
		"i.id", "i.name", "i.serial_number",
		"COALESCE(s.issue_no, '')", "COALESCE(s.operator_name, '')",
		"COALESCE(co.name, '')", "COALESCE(ct.name, '')", "COALESCE(m.name, '')",
	).
		From("returns r").
		LeftJoin("issues s ON s.id = r.issue_id").
		Join("items i ON i.id = " + colItem).
		LeftJoin("companies co ON co.id = " + colCompany).
		LeftJoin("contractors ct ON ct.id = " + colContractor).
		LeftJoin("machines m ON m.id = " + colMachine)
}

// Effective join keys of a return.
const (
	colItem       = "COALESCE(s.item_id, r.item_id)"
	colCompany    = "COALESCE(s.company_id, r.company_id)"
	colContractor = "COALESCE(s.contractor_id, r.contractor_id)"
	colMachine    = "COALESCE(s.machine_id, r.machine_id)"
	colLocation   = "COALESCE(s.location_id, r.location_id)"
)

func scanReturn(s rowScanner) (*model.Return, error) {
	r := &model.Return{}
	var issueID, itemID *int64
	err := s.Scan(&r.ID, &r.ReturnCode, &issueID, &itemID, &r.Condition, &r.ReturnedBy,
		&r.ImagePath, &r.ReceivedBy, &r.Remarks,
		&r.Context.CompanyID, &r.Context.ContractorID, &r.Context.MachineID, &r.Context.LocationID,
		&r.IsActive, &r.CreatedAt,
		&r.ItemID, &r.ItemName, &r.ItemSerial,
		&r.IssueNo, &r.OperatorName,
		&r.CompanyName, &r.ContractorName, &r.MachineName)
	if err != nil {
		return nil, err
	}
	r.Provenance = model.ProvenanceFromColumns(issueID, itemID)
	return r, nil
}

func queryReturns(ctx context.Context, q db.Querier, b sq.SelectBuilder) ([]model.Return, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building return query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing returns: %w", err)
	}
	defer rows.Close()

	var returns []model.Return
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning return: %w", err)
		}
		returns = append(returns, *r)
	}
	return returns, rows.Err()
}

// GetReturn returns a return by ID, hydrated.
func GetReturn(ctx context.Context, q db.Querier, id int64) (*model.Return, error) {
	query, args, err := returnsQuery().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building return query: %w", err)
	}

	r, err := scanReturn(q.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting return: %w", err)
	}
	return r, nil
}

// FindReturnsByIssue returns the returns that closed an issue. With the
// unique issue_id column this is at most one.
func FindReturnsByIssue(ctx context.Context, q db.Querier, issueID int64) ([]model.Return, error) {
	return queryReturns(ctx, q, returnsQuery().
		Where(sq.Eq{"r.issue_id": issueID}).
		OrderBy(ledgerOrder...))
}

// FindReturnsFiltered slices the ledger by f. An empty filter returns every
// return, newest first.
func FindReturnsFiltered(ctx context.Context, q db.Querier, f model.LedgerFilter) ([]model.Return, error) {
	return queryReturns(ctx, q, LedgerQuery(f))
}

// SetReturnActive toggles a return's own active flag. Item and issue state
// are not touched.
func SetReturnActive(ctx context.Context, q db.Querier, id int64, active bool) error {
	result, err := q.ExecContext(ctx,
		`UPDATE returns SET is_active = ? WHERE id = ?`, boolInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("setting return active: %w", err)
	}
	return requireRow(result, fmt.Errorf("return %d: %w", id, model.ErrNotFound))
}

// UpdateReturnRemarks corrects the free-text fields of a return.
func UpdateReturnRemarks(ctx context.Context, q db.Querier, id int64, receivedBy, remarks string) error {
	result, err := q.ExecContext(ctx,
		`UPDATE returns SET received_by = ?, remarks = ? WHERE id = ?`, receivedBy, remarks, id,
	)
	if err != nil {
		return fmt.Errorf("updating return remarks: %w", err)
	}
	return requireRow(result, fmt.Errorf("return %d: %w", id, model.ErrNotFound))
}

// CountReturns returns the number of returns ever created.
func CountReturns(ctx context.Context, q db.Querier) (int, error) {
	return count(ctx, q, "returns")
}

// NextReturnCode derives the next INWARD code from the current row count.
func NextReturnCode(ctx context.Context, q db.Querier) (string, error) {
	n, err := CountReturns(ctx, q)
	if err != nil {
		return "", err
	}
	return codegen.Next(codegen.PrefixReturn, n), nil
}
