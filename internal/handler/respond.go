package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

// fileResponse is the client view of a file record. The blob path never leaves the server.
type fileResponse struct {
	ID       string         `json:"id"`
	UserID   string         `json:"userId"`
	Name     string         `json:"name"`
	Type     model.FileType `json:"type"`
	IsPublic bool           `json:"isPublic"`
	ParentID any            `json:"parentId"` // 0 at the root, the folder id otherwise
}

func newFileResponse(f *model.File) fileResponse {
	var parentID any = f.ParentID
	if f.AtRoot() {
		parentID = 0
	}
	return fileResponse{
		ID:       f.ID,
		UserID:   f.UserID,
		Name:     f.Name,
		Type:     f.Type,
		IsPublic: f.IsPublic,
		ParentID: parentID,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps service errors to status codes. Unknown errors are logged and
// answered with a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *service.RequestError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, reqErr.Message)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
