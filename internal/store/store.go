// Package store holds the SQL for every table. Functions take a db.Querier so
// the same code runs against the pool or inside a lifecycle transaction.
package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/orodjarna/internal/db"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// count returns the number of rows in table.
func count(ctx context.Context, q db.Querier, table string) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// exists reports whether the query built from b matches any row.
func exists(ctx context.Context, q db.Querier, b sq.SelectBuilder) (bool, error) {
	query, args, err := b.Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("building query: %w", err)
	}
	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
