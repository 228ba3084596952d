package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/service"
)

type FileHandler struct {
	fileService   *service.FileService
	maxUploadSize int64
}

func NewFileHandler(fileService *service.FileService, maxUploadSize int64) *FileHandler {
	return &FileHandler{
		fileService:   fileService,
		maxUploadSize: maxUploadSize,
	}
}

// parentRef accepts the parent id as a JSON string or number, so both 0 and "0" name the root.
type parentRef string

func (p *parentRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = parentRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = parentRef(n.String())
	return nil
}

type uploadRequest struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	ParentID parentRef `json:"parentId"`
	IsPublic bool      `json:"isPublic"`
	Data     string    `json:"data"`
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	file, err := h.fileService.Upload(r.Context(), ctxkeys.User(r.Context()), service.UploadRequest{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newFileResponse(file))
}

func (h *FileHandler) Show(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Show(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileResponse(file))
}

func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	files, err := h.fileService.List(r.Context(), ctxkeys.User(r.Context()), query.Get("parentId"), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, f := range files {
		resp = append(resp, newFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *FileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

func (h *FileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *FileHandler) setPublic(w http.ResponseWriter, r *http.Request, value bool) {
	file, err := h.fileService.SetPublic(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newFileResponse(file))
}

// Data serves the raw bytes of a file or, with ?size=, of one of its thumbnails.
// Anonymous callers can read public files.
func (h *FileHandler) Data(w http.ResponseWriter, r *http.Request) {
	content, err := h.fileService.Fetch(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), r.URL.Query().Get("size"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content.Data)
}
