package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/model"
)

func TestCreateReturnFromIssue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	comp := seedRef(t, database, model.RefCompany, "Acme")
	item := seedItem(t, database, "Scope", ptr("SC-1"), "")
	is := seedIssue(t, database, item.ID, user.ID, model.Context{CompanyID: &comp.ID}, "Marko")

	r := seedReturn(t, database, model.FromIssue(is.ID), model.ConditionDamaged, user.ID)

	assert.Equal(t, "INWARD-001", r.ReturnCode)
	issueID, ok := r.Provenance.IssueID()
	assert.True(t, ok)
	assert.Equal(t, is.ID, issueID)
	_, ok = r.Provenance.ItemID()
	assert.False(t, ok)

	// Hydrated through the issue.
	assert.Equal(t, item.ID, r.ItemID)
	assert.Equal(t, "Scope", r.ItemName)
	assert.Equal(t, is.IssueNo, r.IssueNo)
	assert.Equal(t, "Marko", r.OperatorName)
	assert.Equal(t, "Acme", r.CompanyName)
	require.NotNil(t, r.Context.CompanyID)
	assert.Equal(t, comp.ID, *r.Context.CompanyID)
	assert.True(t, r.IsActive)

	byIssue, err := FindReturnsByIssue(ctx, database, is.ID)
	require.NoError(t, err)
	require.Len(t, byIssue, 1)
	assert.Equal(t, r.ID, byIssue[0].ID)
}

func TestCreateDirectReceipt(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	mac := seedRef(t, database, model.RefMachine, "Lathe 2")
	item := seedItem(t, database, "Gauge", nil, model.ItemStatusMissing)

	code, err := NextReturnCode(ctx, database)
	require.NoError(t, err)
	r, err := CreateReturn(ctx, database, CreateReturnParams{
		ReturnCode: code,
		Provenance: model.DirectReceipt(item.ID),
		Condition:  model.ConditionOK,
		ReturnedBy: user.ID,
		ImagePath:  "returns/gauge.jpg",
		ReceivedBy: "Ana",
		Context:    model.Context{MachineID: &mac.ID},
	})
	require.NoError(t, err)

	_, ok := r.Provenance.IssueID()
	assert.False(t, ok)
	itemID, ok := r.Provenance.ItemID()
	assert.True(t, ok)
	assert.Equal(t, item.ID, itemID)
	assert.Equal(t, item.ID, r.ItemID)
	assert.Empty(t, r.IssueNo)
	assert.Equal(t, "Lathe 2", r.MachineName)
	assert.Equal(t, "Ana", r.ReceivedBy)
}

func TestCreateReturnRejectsBadProvenance(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	_, err := CreateReturn(ctx, database, CreateReturnParams{
		ReturnCode: "INWARD-001", Condition: model.ConditionOK, ReturnedBy: user.ID, ImagePath: "x",
	})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestReturnProvenanceCheckConstraint(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	item := seedItem(t, database, "A", nil, "")
	is := seedIssue(t, database, item.ID, user.ID, model.Context{}, "")

	_, err := database.ExecContext(ctx,
		`INSERT INTO returns (return_code, issue_id, item_id, return_condition, returned_by, image_path)
		 VALUES ('INWARD-001', ?, ?, 'OK', ?, 'x')`, is.ID, item.ID, user.ID)
	require.Error(t, err)
	assert.ErrorIs(t, db.ClassifyError(err), model.ErrValidation)
}

func TestSecondReturnForIssueIsConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	is := seedIssue(t, database, seedItem(t, database, "A", nil, "").ID, user.ID, model.Context{}, "")
	seedReturn(t, database, model.FromIssue(is.ID), model.ConditionOK, user.ID)

	_, err := CreateReturn(ctx, database, CreateReturnParams{
		ReturnCode: "INWARD-002", Provenance: model.FromIssue(is.ID),
		Condition: model.ConditionOK, ReturnedBy: user.ID, ImagePath: "x",
	})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestSetReturnActiveAndRemarks(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := seedUser(t, database)
	item := seedItem(t, database, "A", nil, "")
	is := seedIssue(t, database, item.ID, user.ID, model.Context{}, "")
	r := seedReturn(t, database, model.FromIssue(is.ID), model.ConditionOK, user.ID)

	require.NoError(t, SetReturnActive(ctx, database, r.ID, false))
	require.NoError(t, UpdateReturnRemarks(ctx, database, r.ID, "Luka", "wrong condition recorded"))

	got, err := GetReturn(ctx, database, r.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Luka", got.ReceivedBy)
	assert.Equal(t, "wrong condition recorded", got.Remarks)

	// Deactivating a return leaves the issue closed.
	gotIssue, _ := GetIssue(ctx, database, is.ID)
	assert.Equal(t, is.IsReturned, gotIssue.IsReturned)

	assert.ErrorIs(t, SetReturnActive(ctx, database, 9999, true), model.ErrNotFound)
	assert.ErrorIs(t, UpdateReturnRemarks(ctx, database, 9999, "", ""), model.ErrNotFound)

	missing, err := GetReturn(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
