package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/orodjarna/internal/lifecycle"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

// IssuesHandler handles checkout endpoints.
type IssuesHandler struct {
	DB        *sql.DB
	Lifecycle Lifecycle
	Log       *slog.Logger
}

type createIssueRequest struct {
	ItemID       int64  `json:"item_id"`
	CompanyID    *int64 `json:"company_id"`
	ContractorID *int64 `json:"contractor_id"`
	MachineID    *int64 `json:"machine_id"`
	LocationID   *int64 `json:"location_id"`
	OperatorName string `json:"operator_name"`
	Remarks      string `json:"remarks"`
}

// Create handles POST /api/issues.
func (h *IssuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	issue, err := h.Lifecycle.CreateIssue(r.Context(), lifecycle.CreateIssueInput{
		ItemID: req.ItemID,
		Context: model.Context{
			CompanyID:    req.CompanyID,
			ContractorID: req.ContractorID,
			MachineID:    req.MachineID,
			LocationID:   req.LocationID,
		},
		IssuedBy:     GetClaims(r.Context()).UserID,
		OperatorName: req.OperatorName,
		Remarks:      req.Remarks,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusCreated, issue)
}

// List handles GET /api/issues. With active=true only unreturned issues are listed.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		issues []model.Issue
		err    error
	)
	switch r.URL.Query().Get("active") {
	case "true", "1":
		issues, err = store.FindActiveIssues(r.Context(), h.DB)
	case "", "false", "0":
		issues, err = store.ListIssues(r.Context(), h.DB)
	default:
		err = model.NewValidationError("active", "must be true or false")
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(issues))
}

// Get handles GET /api/issues/{id}.
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	issue, err := store.GetIssue(r.Context(), h.DB, id)
	h.respondIssue(w, r, issue, err)
}

// GetByNo handles GET /api/issues/by-no/{issueNo}.
func (h *IssuesHandler) GetByNo(w http.ResponseWriter, r *http.Request) {
	issue, err := store.GetIssueByNo(r.Context(), h.DB, r.PathValue("issueNo"))
	h.respondIssue(w, r, issue, err)
}

func (h *IssuesHandler) respondIssue(w http.ResponseWriter, r *http.Request, issue *model.Issue, err error) {
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if issue == nil {
		jsonError(w, http.StatusNotFound, "not_found", "issue not found")
		return
	}
	jsonResponse(w, http.StatusOK, issue)
}

// NextCode handles GET /api/issues/next-code. The code is advisory.
func (h *IssuesHandler) NextCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Lifecycle.NextIssueNo(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"code": code})
}
