package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/orodjarna/internal/model"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Error  string             `json:"error"`
	Kind   string             `json:"kind"`
	Fields []model.FieldError `json:"fields,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, kind, message string) {
	jsonResponse(w, status, errorBody{Error: message, Kind: kind})
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "invalid_state", "conflict":
		return http.StatusConflict
	case "unauthorized":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// writeError renders err by its kind. Internal errors are logged and their
// text is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	kind := model.ErrorKind(err)
	status := statusForKind(kind)

	body := errorBody{Error: err.Error(), Kind: kind}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Errors
	}
	if status == http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFrom(r.Context()),
		)
		body.Error = "internal error"
	}
	jsonResponse(w, status, body)
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return model.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryIDs collects ids from a repeatable, comma-separated query parameter.
func queryIDs(r *http.Request, name string) ([]int64, error) {
	var ids []int64
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				return nil, model.NewValidationError(name, "must be a list of positive integers")
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// emptyIfNil keeps list responses as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
