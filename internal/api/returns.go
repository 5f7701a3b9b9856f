package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/orodjarna/internal/lifecycle"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

// ReturnsHandler handles check-in and ledger endpoints.
type ReturnsHandler struct {
	DB        *sql.DB
	Lifecycle Lifecycle
	Log       *slog.Logger
}

type createReturnRequest struct {
	IssueID    int64  `json:"issue_id"`
	Condition  string `json:"condition"`
	ImagePath  string `json:"image_path"`
	ReceivedBy string `json:"received_by"`
	Remarks    string `json:"remarks"`
}

type receiveRequest struct {
	ItemID       int64  `json:"item_id"`
	Condition    string `json:"condition"`
	ImagePath    string `json:"image_path"`
	ReceivedBy   string `json:"received_by"`
	Remarks      string `json:"remarks"`
	CompanyID    *int64 `json:"company_id"`
	ContractorID *int64 `json:"contractor_id"`
	MachineID    *int64 `json:"machine_id"`
	LocationID   *int64 `json:"location_id"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

// Create handles POST /api/returns.
func (h *ReturnsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ret, err := h.Lifecycle.CreateReturn(r.Context(), lifecycle.CreateReturnInput{
		IssueID:    req.IssueID,
		Condition:  req.Condition,
		ReturnedBy: GetClaims(r.Context()).UserID,
		ImagePath:  req.ImagePath,
		ReceivedBy: req.ReceivedBy,
		Remarks:    req.Remarks,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusCreated, ret)
}

// Receive handles POST /api/returns/receive for items marked missing.
func (h *ReturnsHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req receiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ret, err := h.Lifecycle.ReceiveMissingItem(r.Context(), lifecycle.ReceiveMissingInput{
		ItemID:     req.ItemID,
		Condition:  req.Condition,
		ReturnedBy: GetClaims(r.Context()).UserID,
		ImagePath:  req.ImagePath,
		ReceivedBy: req.ReceivedBy,
		Remarks:    req.Remarks,
		Context: model.Context{
			CompanyID:    req.CompanyID,
			ContractorID: req.ContractorID,
			MachineID:    req.MachineID,
			LocationID:   req.LocationID,
		},
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusCreated, ret)
}

// List handles GET /api/returns.
func (h *ReturnsHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := ledgerFilter(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	returns, err := store.FindReturnsFiltered(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(returns))
}

// Get handles GET /api/returns/{id}.
func (h *ReturnsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ret, err := store.GetReturn(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if ret == nil {
		jsonError(w, http.StatusNotFound, "not_found", "return not found")
		return
	}
	jsonResponse(w, http.StatusOK, ret)
}

// SetActive handles PUT /api/returns/{id}/active. Deactivating a return only
// hides it from active ledger views; the item and issue are untouched.
func (h *ReturnsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if req.Active == nil {
		writeError(w, r, h.Log, model.NewValidationError("active", "required"))
		return
	}

	if err := store.SetReturnActive(r.Context(), h.DB, id, *req.Active); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Log.Info("return active flag changed",
		"return_id", id, "active", *req.Active, "user", GetClaims(r.Context()).Username)
	ret, err := store.GetReturn(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, ret)
}

type updateRemarksRequest struct {
	ReceivedBy string `json:"received_by"`
	Remarks    string `json:"remarks"`
}

// UpdateRemarks handles PUT /api/returns/{id}/remarks.
func (h *ReturnsHandler) UpdateRemarks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var req updateRemarksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ret, err := h.Lifecycle.UpdateReturnRemarks(r.Context(), lifecycle.UpdateRemarksInput{
		ReturnID:   id,
		ReceivedBy: req.ReceivedBy,
		Remarks:    req.Remarks,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusOK, ret)
}

// NextCode handles GET /api/returns/next-code. The code is advisory.
func (h *ReturnsHandler) NextCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Lifecycle.NextReturnCode(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"code": code})
}

// ledgerFilter reads the ledger filter from the query string.
func ledgerFilter(r *http.Request) (model.LedgerFilter, error) {
	q := r.URL.Query()

	var (
		f    model.LedgerFilter
		errs []model.FieldError
		err  error
	)
	if f.Status, err = model.ParseStatusFilter(q.Get("status")); err != nil {
		errs = append(errs, model.FieldError{Field: "status", Message: "must be one of all, active, inactive"})
	}
	for _, p := range []struct {
		name string
		dst  *[]int64
	}{
		{"company_id", &f.CompanyIDs},
		{"contractor_id", &f.ContractorIDs},
		{"machine_id", &f.MachineIDs},
		{"item_id", &f.ItemIDs},
	} {
		ids, err := queryIDs(r, p.name)
		if err != nil {
			errs = append(errs, model.FieldError{Field: p.name, Message: "must be a list of positive integers"})
			continue
		}
		*p.dst = ids
	}
	f.OperatorName = q.Get("operator")
	f.Search = q.Get("q")

	if len(errs) > 0 {
		return model.LedgerFilter{}, &model.ValidationError{Errors: errs}
	}
	return f, nil
}
