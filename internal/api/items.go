package api

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/orodjarna/internal/blob"
	"github.com/erazemk/orodjarna/internal/imaging"
	"github.com/erazemk/orodjarna/internal/model"
	"github.com/erazemk/orodjarna/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Images *imaging.Store
	Log    *slog.Logger
}

type createItemRequest struct {
	Name         string  `json:"name"`
	SerialNumber *string `json:"serial_number"`
	CategoryID   *int64  `json:"category_id"`
	ImagePath    *string `json:"image_path"`
}

type itemHistory struct {
	Item    *model.Item    `json:"item"`
	Issues  []model.Issue  `json:"issues"`
	Returns []model.Return `json:"returns"`
}

// List handles GET /api/items. Without a status, all active items are listed;
// status=AVAILABLE lists only items that can be issued right now.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []model.Item
		err   error
	)
	switch status := model.ItemStatus(strings.ToUpper(r.URL.Query().Get("status"))); status {
	case "":
		items, err = store.FindActiveItems(r.Context(), h.DB)
	case model.ItemStatusAvailable:
		items, err = store.FindAvailableItems(r.Context(), h.DB)
	default:
		items, err = store.FindItemsByStatus(r.Context(), h.DB, status)
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(items))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, r, h.Log, model.NewValidationError("name", "required"))
		return
	}

	if req.SerialNumber != nil && strings.TrimSpace(*req.SerialNumber) != "" {
		exists, err := store.SerialNumberExists(r.Context(), h.DB, strings.TrimSpace(*req.SerialNumber))
		if err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		if exists {
			writeError(w, r, h.Log, model.NewValidationError("serial_number", "already exists"))
			return
		}
	}

	item, err := store.CreateItem(r.Context(), h.DB, store.CreateItemParams{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		CategoryID:   req.CategoryID,
		ImagePath:    req.ImagePath,
		Status:       model.ItemStatusAvailable,
	})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// History handles GET /api/items/{id}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	issues, err := store.ListIssuesForItem(r.Context(), h.DB, item.ID)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	returns, err := store.FindReturnsFiltered(r.Context(), h.DB, model.LedgerFilter{ItemIDs: []int64{item.ID}})
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusOK, itemHistory{
		Item:    item,
		Issues:  emptyIfNil(issues),
		Returns: emptyIfNil(returns),
	})
}

// SetActive handles PUT /api/items/{id}/active.
func (h *ItemsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
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

	if err := store.SetItemActive(r.Context(), h.DB, id, *req.Active); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// UploadImage handles PUT /api/items/{id}/image. The photo is stored under
// the item's serial number when it has one.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	file, err := formImage(w, r, h.Images.MaxBytes())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer file.Close()

	key := strconv.FormatInt(item.ID, 10)
	if item.SerialNumber != nil && *item.SerialNumber != "" {
		key = *item.SerialNumber
	}
	path, err := h.Images.Save(r.Context(), imaging.ScopeItems, key, file)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	if err := store.SetItemImage(r.Context(), h.DB, item.ID, path); err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"image_path": path})
}

func (h *ItemsHandler) loadItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.Log, err)
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "not_found", "item not found")
		return nil, false
	}
	return item, true
}

// ImagesHandler handles image uploads and downloads.
type ImagesHandler struct {
	Images *imaging.Store
	Log    *slog.Logger
}

// Upload handles POST /api/uploads/images. The form carries the photo in
// "image", the logical key in "key" and optionally the scope (items or
// returns, default returns). The stored path is what a return records.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, err := formImage(w, r, h.Images.MaxBytes())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer file.Close()

	scope := imaging.Scope(r.FormValue("scope"))
	if scope == "" {
		scope = imaging.ScopeReturns
	}

	path, err := h.Images.Save(r.Context(), scope, r.FormValue("key"), file)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"path": path})
}

// Get handles GET /api/images/{path...}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, rc, err := h.Images.Open(r.Context(), r.PathValue("path"))
	if errors.Is(err, blob.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "not_found", "image not found")
		return
	}
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", info.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Warn("writing image", "path", r.PathValue("path"), "error", err)
	}
}

// formImage returns the "image" part of a multipart request.
func formImage(w http.ResponseWriter, r *http.Request, maxBytes int64) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, model.NewValidationError("image", "invalid or too large multipart form")
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, model.NewValidationError("image", "required")
	}
	return file, nil
}
