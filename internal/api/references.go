package api

import (
	"bytes"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/sheet"
	"github.com/erazemk/orodjarna/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxWorkbookBytes bounds an uploaded reference workbook.
const maxWorkbookBytes = 8 << 20

// ReferencesHandler handles the reference-data endpoints.
type ReferencesHandler struct {
	DB  *sql.DB
	Log *slog.Logger
}

type createReferenceRequest struct {
	Name string `json:"name"`
}

func referenceKind(r *http.Request) (model.ReferenceKind, error) {
	kind := model.ReferenceKind(r.PathValue("kind"))
	if !kind.Valid() {
		return "", model.NewValidationError("kind", fmt.Sprintf("unknown reference kind %q", kind))
	}
	return kind, nil
}

// List handles GET /api/references/{kind}.
func (h *ReferencesHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := referenceKind(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	refs, err := store.ListReferences(r.Context(), h.DB, kind)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(refs))
}

// Create handles POST /api/references/{kind}.
func (h *ReferencesHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, err := referenceKind(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var req createReferenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	ref, err := store.CreateReference(r.Context(), h.DB, kind, req.Name)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusCreated, ref)
}

// SetActive handles PUT /api/references/{kind}/{id}/active.
func (h *ReferencesHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	kind, err := referenceKind(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
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

	if err := store.SetReferenceActive(r.Context(), h.DB, kind, id, *req.Active); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	ref, err := store.GetReference(r.Context(), h.DB, kind, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, ref)
}

// Import handles POST /api/references/{kind}/import. The body is the
// workbook itself, or a multipart form with the workbook in "file".
func (h *ReferencesHandler) Import(w http.ResponseWriter, r *http.Request) {
	kind, err := referenceKind(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxWorkbookBytes)

	var res sheet.Result
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			writeError(w, r, h.Log, model.NewValidationError("file", "required"))
			return
		}
		defer file.Close()
		res, err = sheet.Import(r.Context(), h.DB, kind, file)
	} else {
		res, err = sheet.Import(r.Context(), h.DB, kind, r.Body)
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	h.Log.Info("references imported", "kind", kind, "rows", res.Imported, "user", GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusOK, res)
}

// Export handles GET /api/references/{kind}/export.
func (h *ReferencesHandler) Export(w http.ResponseWriter, r *http.Request) {
	kind, err := referenceKind(r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	var buf bytes.Buffer
	if err := sheet.Export(r.Context(), h.DB, kind, &buf); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	name := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Log.Warn("writing export", "kind", kind, "error", err)
	}
}
