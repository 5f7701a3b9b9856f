package store

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/orodjarna/internal/model"
)

var ledgerOrder = []string{"r.created_at DESC", "r.id DESC"}

// searchColumns are matched against the free-text term, any one is a hit.
var searchColumns = []string{
	"r.return_code",
	"r.return_condition",
	"s.issue_no",
	"i.name",
	"i.serial_number",
	"co.name",
	"ct.name",
	"m.name",
	"s.operator_name",
}

// LedgerQuery builds the select for f. Each non-empty part of the filter adds
// one predicate and all predicates are ANDed.
func LedgerQuery(f model.LedgerFilter) sq.SelectBuilder {
	b := returnsQuery().OrderBy(ledgerOrder...)
	if pred := LedgerPredicate(f); len(pred) > 0 {
		b = b.Where(pred)
	}
	return b
}

// LedgerPredicate returns the predicates f selects; empty means match all.
func LedgerPredicate(f model.LedgerFilter) sq.And {
	var and sq.And
	for _, p := range []sq.Sqlizer{
		statusPredicate(f.Status),
		inPredicate(colCompany, f.CompanyIDs),
		inPredicate(colContractor, f.ContractorIDs),
		inPredicate(colMachine, f.MachineIDs),
		inPredicate(colItem, f.ItemIDs),
		containsPredicate("s.operator_name", f.OperatorName),
		searchPredicate(f.Search),
	} {
		if p != nil {
			and = append(and, p)
		}
	}
	return and
}

// statusPredicate filters on the return's own active flag.
func statusPredicate(s model.StatusFilter) sq.Sqlizer {
	switch s {
	case model.StatusActive:
		return sq.Eq{"r.is_active": 1}
	case model.StatusInactive:
		return sq.Eq{"r.is_active": 0}
	}
	return nil
}

// inPredicate matches any of ids; nil when ids is empty.
func inPredicate(column string, ids []int64) sq.Sqlizer {
	if len(ids) == 0 {
		return nil
	}
	return sq.Eq{column: ids}
}

// containsPredicate is a case-insensitive substring match.
func containsPredicate(column, term string) sq.Sqlizer {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	return sq.Expr(column+` LIKE ? ESCAPE '\'`, likePattern(term))
}

// searchPredicate ORs a substring match over every searchable column.
func searchPredicate(term string) sq.Sqlizer {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	or := make(sq.Or, 0, len(searchColumns))
	for _, col := range searchColumns {
		or = append(or, containsPredicate(col, term))
	}
	return or
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
