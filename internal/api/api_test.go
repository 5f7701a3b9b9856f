package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/orodjarna/internal/auth"
	"github.com/erazemk/orodjarna/internal/blob"
	"github.com/erazemk/orodjarna/internal/db"
	"github.com/erazemk/orodjarna/internal/imaging"
	"github.com/erazemk/orodjarna/internal/lifecycle"
	"github.com/erazemk/orodjarna/internal/metrics"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/sheet"
	"github.com/erazemk/orodjarna/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server *httptest.Server
	db     *sql.DB
	token  string // admin
}

func (e *testEnv) item(t *testing.T, name string, serial *string) *model.Item {
	t.Helper()
	item, err := store.CreateItem(context.Background(), e.db, store.CreateItemParams{
		Name: name, SerialNumber: serial, Status: model.ItemStatusAvailable,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) ref(t *testing.T, kind model.ReferenceKind, name string) *model.Reference {
	t.Helper()
	ref, err := store.CreateReference(context.Background(), e.db, kind, name)
	require.NoError(t, err)
	return ref
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := metrics.NewRegistry()
	tokens := auth.NewIssuer(testJWTSecret, time.Hour)
	router := NewRouter(Deps{
		DB:          database,
		Lifecycle:   lifecycle.NewService(log, database, metrics.NewLifecycle(reg), lifecycle.Config{}),
		Tokens:      tokens,
		Images:      imaging.NewStore(blob.NewMemory(), imaging.Options{}),
		Log:         log,
		Metrics:     metrics.Handler(reg),
		MetricsPath: "/metrics",
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	ctx := context.Background()
	for _, u := range []struct{ name, role string }{
		{"admin", model.RoleAdmin},
		{"worker", model.RoleUser},
	} {
		hash, err := auth.HashPassword("password")
		require.NoError(t, err)
		_, err = store.CreateUser(ctx, database, u.name, hash, u.role)
		require.NoError(t, err)
	}

	env := &testEnv{server: server, db: database}
	env.token = env.login(t, "admin", "password")
	return env
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body loginResponse
	decode(t, resp, &body)
	require.NotEmpty(t, body.Token)
	assert.Equal(t, int64(3600), body.ExpiresIn)
	return body.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func expectError(t *testing.T, resp *http.Response, status int, kind string) errorBody {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	var body errorBody
	decode(t, resp, &body)
	assert.Equal(t, kind, body.Kind)
	assert.NotEmpty(t, body.Error)
	return body
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	expectError(t, resp, http.StatusUnauthorized, "unauthorized")

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "nobody", "password": "password",
	})
	expectError(t, resp, http.StatusUnauthorized, "unauthorized")

	resp = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestAuthRequired(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/issues", "", nil)
	expectError(t, resp, http.StatusUnauthorized, "unauthorized")

	resp = env.do(t, http.MethodGet, "/api/issues", "garbage", nil)
	expectError(t, resp, http.StatusUnauthorized, "unauthorized")
}

func TestRequestIDHeader(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodGet, "/api/items", env.token, nil)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/items", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set(requestIDHeader, "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get(requestIDHeader))
}

func TestIssueReturnFlow(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Torque wrench", ptr("TW-1"))
	company := env.ref(t, model.RefCompany, "Acme")

	resp := env.do(t, http.MethodGet, "/api/issues/next-code", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var next map[string]string
	decode(t, resp, &next)
	assert.Equal(t, "OUTWARD-001", next["code"])

	resp = env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{
		"item_id":       item.ID,
		"company_id":    company.ID,
		"operator_name": "Ravi",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var issue model.Issue
	decode(t, resp, &issue)
	assert.Equal(t, "OUTWARD-001", issue.IssueNo)
	assert.False(t, issue.IsReturned)
	// Issuer comes from the token.
	admin := env.userID(t, "admin")
	assert.Equal(t, admin, issue.IssuedBy)

	// Issuing again conflicts with the item state.
	resp = env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{"item_id": item.ID})
	expectError(t, resp, http.StatusConflict, "invalid_state")

	resp = env.do(t, http.MethodGet, "/api/items?status=issued", env.token, nil)
	var issued []model.Item
	decode(t, resp, &issued)
	require.Len(t, issued, 1)
	assert.Equal(t, item.ID, issued[0].ID)

	resp = env.do(t, http.MethodGet, "/api/issues?active=true", env.token, nil)
	var active []model.Issue
	decode(t, resp, &active)
	require.Len(t, active, 1)

	resp = env.do(t, http.MethodGet, "/api/issues/by-no/OUTWARD-001", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/returns", env.token, map[string]any{
		"issue_id":   issue.ID,
		"condition":  "damaged",
		"image_path": "returns/OUTWARD-001.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ret model.Return
	decode(t, resp, &ret)
	assert.Equal(t, "INWARD-001", ret.ReturnCode)
	assert.Equal(t, model.ConditionDamaged, ret.Condition)
	assert.Equal(t, admin, ret.ReturnedBy)

	// A second return for the same issue is rejected.
	resp = env.do(t, http.MethodPost, "/api/returns", env.token, map[string]any{
		"issue_id": issue.ID, "condition": "OK", "image_path": "x.jpg",
	})
	expectError(t, resp, http.StatusConflict, "invalid_state")

	resp = env.do(t, http.MethodGet, "/api/issues?active=true", env.token, nil)
	decode(t, resp, &active)
	assert.Empty(t, active)

	resp = env.do(t, http.MethodGet, "/api/items?status=AVAILABLE", env.token, nil)
	var available []model.Item
	decode(t, resp, &available)
	require.Len(t, available, 1)

	resp = env.do(t, http.MethodGet, "/api/returns?company_id="+itoa(company.ID), env.token, nil)
	var ledger []model.Return
	decode(t, resp, &ledger)
	require.Len(t, ledger, 1)
	assert.Equal(t, "Acme", ledger[0].CompanyName)

	resp = env.do(t, http.MethodGet, "/api/items/"+itoa(item.ID)+"/history", env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hist itemHistory
	decode(t, resp, &hist)
	assert.Len(t, hist.Issues, 1)
	assert.Len(t, hist.Returns, 1)
}

func TestCreateItemSerialNumbers(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, http.MethodPost, "/api/items", env.token, map[string]any{"name": "Drill", "serial_number": "SN-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/items", env.token, map[string]any{"name": "Other drill", "serial_number": " SN-1 "})
	body := expectError(t, resp, http.StatusBadRequest, "validation")
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "serial_number", body.Fields[0].Field)

	// Blank serials are stored as none and never collide.
	for _, name := range []string{"Hammer", "Mallet"} {
		resp = env.do(t, http.MethodPost, "/api/items", env.token, map[string]any{"name": name, "serial_number": ""})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var item model.Item
		decode(t, resp, &item)
		assert.Nil(t, item.SerialNumber)
	}
}

func TestUpdateReturnRemarks(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Caliper", nil)

	resp := env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var issue model.Issue
	decode(t, resp, &issue)

	resp = env.do(t, http.MethodPost, "/api/returns", env.token, map[string]any{
		"issue_id": issue.ID, "condition": "OK", "image_path": "returns/1.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ret model.Return
	decode(t, resp, &ret)

	path := "/api/returns/" + itoa(ret.ID) + "/remarks"
	update := map[string]any{"received_by": "Maja", "remarks": "Checked against gauge block"}

	worker := env.login(t, "worker", "password")
	resp = env.do(t, http.MethodPut, path, worker, update)
	expectError(t, resp, http.StatusForbidden, "forbidden")

	resp = env.do(t, http.MethodPut, path, env.token, update)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated model.Return
	decode(t, resp, &updated)
	assert.Equal(t, ret.ReturnCode, updated.ReturnCode)
	assert.Equal(t, "Maja", updated.ReceivedBy)
	assert.Equal(t, "Checked against gauge block", updated.Remarks)

	resp = env.do(t, http.MethodPut, "/api/returns/999/remarks", env.token, update)
	expectError(t, resp, http.StatusNotFound, "not_found")

	resp = env.do(t, http.MethodPut, path, env.token, map[string]any{"remarks": strings.Repeat("x", 2001)})
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestMissingItemReceipt(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Multimeter", nil)

	resp := env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{"item_id": item.ID})
	var issue model.Issue
	decode(t, resp, &issue)

	resp = env.do(t, http.MethodPost, "/api/returns", env.token, map[string]any{
		"issue_id": issue.ID, "condition": "Missing", "image_path": "returns/a.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/returns/receive", env.token, map[string]any{
		"item_id": item.ID, "condition": "Missing", "image_path": "returns/b.jpg",
	})
	body := expectError(t, resp, http.StatusBadRequest, "validation")
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "condition", body.Fields[0].Field)

	resp = env.do(t, http.MethodPost, "/api/returns/receive", env.token, map[string]any{
		"item_id": item.ID, "condition": "OK", "image_path": "returns/b.jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var ret model.Return
	decode(t, resp, &ret)
	assert.Equal(t, "INWARD-002", ret.ReturnCode)
	assert.Equal(t, model.DirectReceipt(item.ID), ret.Provenance)

	// No longer missing.
	resp = env.do(t, http.MethodPost, "/api/returns/receive", env.token, map[string]any{
		"item_id": item.ID, "condition": "OK", "image_path": "returns/c.jpg",
	})
	expectError(t, resp, http.StatusConflict, "invalid_state")
}

func TestErrorMapping(t *testing.T) {
	env := setupTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		kind   string
	}{
		{"unknown item", http.MethodPost, "/api/issues", map[string]any{"item_id": 999}, http.StatusNotFound, "not_found"},
		{"missing item id", http.MethodPost, "/api/issues", map[string]any{}, http.StatusBadRequest, "validation"},
		{"unknown field", http.MethodPost, "/api/issues", map[string]any{"item": 1}, http.StatusBadRequest, "validation"},
		{"unknown issue", http.MethodPost, "/api/returns", map[string]any{"issue_id": 42, "condition": "OK", "image_path": "x"}, http.StatusNotFound, "not_found"},
		{"bad condition", http.MethodPost, "/api/returns", map[string]any{"issue_id": 1, "condition": "Broken", "image_path": "x"}, http.StatusBadRequest, "validation"},
		{"issue lookup", http.MethodGet, "/api/issues/77", nil, http.StatusNotFound, "not_found"},
		{"bad issue id", http.MethodGet, "/api/issues/abc", nil, http.StatusBadRequest, "validation"},
		{"bad status filter", http.MethodGet, "/api/returns?status=weird", nil, http.StatusBadRequest, "validation"},
		{"bad id filter", http.MethodGet, "/api/returns?item_id=1,x", nil, http.StatusBadRequest, "validation"},
		{"bad item status", http.MethodGet, "/api/items?status=LOST", nil, http.StatusBadRequest, "validation"},
		{"unknown kind", http.MethodGet, "/api/references/planet", nil, http.StatusBadRequest, "validation"},
		{"return toggle unknown", http.MethodPut, "/api/returns/5/active", map[string]any{"active": false}, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, tt.method, tt.path, env.token, tt.body)
			expectError(t, resp, tt.status, tt.kind)
		})
	}
}

func TestLedgerFilters(t *testing.T) {
	env := setupTestServer(t)
	acme := env.ref(t, model.RefCompany, "Acme")
	beta := env.ref(t, model.RefCompany, "Beta")

	var returnIDs []int64
	for i, c := range []*model.Reference{acme, beta, acme} {
		item := env.item(t, "Drill", ptr("D-"+itoa(int64(i))))
		resp := env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{
			"item_id": item.ID, "company_id": c.ID, "operator_name": "op" + itoa(int64(i)),
		})
		var issue model.Issue
		decode(t, resp, &issue)

		resp = env.do(t, http.MethodPost, "/api/returns", env.token, map[string]any{
			"issue_id": issue.ID, "condition": "OK", "image_path": "returns/r.jpg",
		})
		var ret model.Return
		decode(t, resp, &ret)
		returnIDs = append(returnIDs, ret.ID)
	}

	list := func(query string) []model.Return {
		t.Helper()
		resp := env.do(t, http.MethodGet, "/api/returns"+query, env.token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []model.Return
		decode(t, resp, &out)
		return out
	}

	all := list("")
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, returnIDs[2], all[0].ID)

	assert.Len(t, list("?company_id="+itoa(acme.ID)), 2)
	assert.Len(t, list("?company_id="+itoa(acme.ID)+","+itoa(beta.ID)), 3)
	assert.Len(t, list("?company_id="+itoa(acme.ID)+"&company_id="+itoa(beta.ID)), 3)
	assert.Len(t, list("?operator=OP1"), 1)
	assert.Len(t, list("?q=beta"), 1)

	// Deactivation needs a manager.
	worker := env.login(t, "worker", "password")
	resp := env.do(t, http.MethodPut, "/api/returns/"+itoa(returnIDs[0])+"/active", worker, map[string]any{"active": false})
	expectError(t, resp, http.StatusForbidden, "forbidden")

	resp = env.do(t, http.MethodPut, "/api/returns/"+itoa(returnIDs[0])+"/active", env.token, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ret model.Return
	decode(t, resp, &ret)
	assert.False(t, ret.IsActive)

	assert.Len(t, list("?status=active"), 2)
	assert.Len(t, list("?status=inactive"), 1)
	assert.Len(t, list("?status=all"), 3)

	// The item stays available after a return is deactivated.
	resp = env.do(t, http.MethodGet, "/api/items?status=AVAILABLE", env.token, nil)
	var available []model.Item
	decode(t, resp, &available)
	assert.Len(t, available, 3)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageUpload(t *testing.T) {
	env := setupTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("key", "OUTWARD-007"))
	part, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes(t))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/uploads/images", &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out map[string]string
	decode(t, resp, &out)
	assert.Equal(t, "returns/OUTWARD-007.jpg", out["path"])

	got := env.do(t, http.MethodGet, "/api/images/"+out["path"], env.token, nil)
	require.Equal(t, http.StatusOK, got.StatusCode)
	assert.Equal(t, "image/jpeg", got.Header.Get("Content-Type"))

	missing := env.do(t, http.MethodGet, "/api/images/returns/nope.jpg", env.token, nil)
	expectError(t, missing, http.StatusNotFound, "not_found")
}

func TestImageUploadRejectsNonImage(t *testing.T) {
	env := setupTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/uploads/images", &body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	expectError(t, resp, http.StatusBadRequest, "validation")
}

func TestReferenceImportExport(t *testing.T) {
	env := setupTestServer(t)

	var wb bytes.Buffer
	require.NoError(t, sheet.WriteRows(&wb, model.RefContractor, []model.Reference{
		{Code: "CONT-001", Name: "Kumar & Sons", IsActive: true},
		{Code: "CONT-002", Name: "Lee Builders", IsActive: false},
	}))

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/references/contractor/import", &wb)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set("Content-Type", xlsxContentType)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res sheet.Result
	decode(t, resp, &res)
	assert.Equal(t, 2, res.Imported)

	list := env.do(t, http.MethodGet, "/api/references/contractor", env.token, nil)
	var refs []model.Reference
	decode(t, list, &refs)
	require.Len(t, refs, 2)

	export := env.do(t, http.MethodGet, "/api/references/contractor/export", env.token, nil)
	require.Equal(t, http.StatusOK, export.StatusCode)
	assert.Equal(t, xlsxContentType, export.Header.Get("Content-Type"))
	rows, err := sheet.ReadRows(export.Body)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CONT-001", rows[0].Code)

	worker := env.login(t, "worker", "password")
	forbidden := env.do(t, http.MethodGet, "/api/references/contractor/export", worker, nil)
	expectError(t, forbidden, http.StatusForbidden, "forbidden")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	item := env.item(t, "Ladder", nil)
	env.do(t, http.MethodPost, "/api/issues", env.token, map[string]any{"item_id": item.ID})

	resp, err := http.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `orodjarna_lifecycle_operations_total{operation="create_issue",outcome="ok"} 1`))
}

func TestRecoveryMiddleware(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Chain(RequestID, Recovery(log))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal", body.Kind)
}

func (e *testEnv) userID(t *testing.T, username string) int64 {
	t.Helper()
	u, err := store.GetUserByUsername(context.Background(), e.db, username)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.ID
}

func ptr[T any](v T) *T { return &v }

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
