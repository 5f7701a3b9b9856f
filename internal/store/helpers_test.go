package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

func ptr[T any](v T) *T { return &v }

// seedUser creates a user to act as issuer and returner.
func seedUser(t *testing.T, database *sql.DB) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, "storekeeper", "hash", model.RoleUser)
	require.NoError(t, err)
	return u
}

func seedItem(t *testing.T, q db.Querier, name string, serial *string, status model.ItemStatus) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), q, CreateItemParams{Name: name, SerialNumber: serial, Status: status})
	require.NoError(t, err)
	return item
}

func seedRef(t *testing.T, q db.Querier, kind model.ReferenceKind, name string) *model.Reference {
	t.Helper()
	ref, err := CreateReference(context.Background(), q, kind, name)
	require.NoError(t, err)
	return ref
}

func seedIssue(t *testing.T, q db.Querier, itemID, userID int64, c model.Context, operator string) *model.Issue {
	t.Helper()
	ctx := context.Background()
	no, err := NextIssueNo(ctx, q)
	require.NoError(t, err)
	is, err := CreateIssue(ctx, q, CreateIssueParams{
		IssueNo: no, ItemID: itemID, IssuedBy: userID, Context: c, OperatorName: operator,
	})
	require.NoError(t, err)
	return is
}

func seedReturn(t *testing.T, q db.Querier, p model.Provenance, cond model.Condition, userID int64) *model.Return {
	t.Helper()
	ctx := context.Background()
	code, err := NextReturnCode(ctx, q)
	require.NoError(t, err)
	r, err := CreateReturn(ctx, q, CreateReturnParams{
		ReturnCode: code, Provenance: p, Condition: cond, ReturnedBy: userID, ImagePath: "returns/x.jpg",
	})
	require.NoError(t, err)
	return r
}
