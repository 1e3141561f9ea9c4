package estimate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/hallday/hallday-api/internal/gallery"
	"github.com/hallday/hallday-api/internal/middleware"
	"github.com/hallday/hallday-api/internal/pkg/response"
	"github.com/hallday/hallday-api/internal/pkg/storage"
	"github.com/hallday/hallday-api/internal/pkg/validator"
)

const maxMultipartMemory = 32 << 20

// Handler handles estimate HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates a new estimate handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /{prefix}
// Expects multipart form data: a "payload" JSON part plus one file part
// per staged photo referenced from payload.photos.
func (h *Handler) Create(estimateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, files, ok := h.parseWrite(w, r)
		if !ok {
			return
		}

		det, err := h.service.Create(r.Context(), estimateType, req, files, middleware.GetAdminID(r.Context()))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		response.Created(w, map[string]interface{}{"estimate": det})
	}
}

// Update handles PUT /{prefix}/{id}
func (h *Handler) Update(estimateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid estimate ID")
			return
		}

		req, files, ok := h.parseWrite(w, r)
		if !ok {
			return
		}

		det, err := h.service.Update(r.Context(), estimateType, id, req, files)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		response.OK(w, map[string]interface{}{"estimate": det})
	}
}

// GetByID handles GET /{prefix}/{id}
func (h *Handler) GetByID(estimateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid estimate ID")
			return
		}

		det, err := h.service.Get(r.Context(), estimateType, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		response.OK(w, map[string]interface{}{"estimate": det})
	}
}

// List handles GET /{prefix}
func (h *Handler) List(estimateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		search := r.URL.Query().Get("q")

		list, err := h.service.List(r.Context(), estimateType, search, page, limit)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		pages := (list.Total + list.Limit - 1) / list.Limit
		response.WithMeta(w, map[string]interface{}{"estimates": list.Estimates}, response.Meta{
			Page:    list.Page,
			Limit:   list.Limit,
			Total:   list.Total,
			Pages:   pages,
			HasNext: list.Page < pages,
			HasPrev: list.Page > 1,
		})
	}
}

// Delete handles DELETE /{prefix}/{id}
func (h *Handler) Delete(estimateType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid estimate ID")
			return
		}

		if err := h.service.Delete(r.Context(), estimateType, id); err != nil {
			h.writeError(w, r, err)
			return
		}
		response.NoContent(w)
	}
}

// parseWrite reads the multipart payload and stages every file part.
// On a false return an error response has already been written and any
// opened files released.
func (h *Handler) parseWrite(w http.ResponseWriter, r *http.Request) (*WriteRequest, PhotoFiles, bool) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return nil, nil, false
	}

	payload := r.FormValue("payload")
	if payload == "" {
		response.BadRequest(w, "Missing payload")
		return nil, nil, false
	}

	var req WriteRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		response.BadRequest(w, "Invalid payload JSON")
		return nil, nil, false
	}

	if details := validator.Validate(&req); details != nil {
		response.ValidationError(w, details)
		return nil, nil, false
	}

	files := PhotoFiles{}
	for field, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			releaseAll(files)
			log.Error().Err(err).Str("field", field).Msg("failed to open uploaded file")
			response.BadRequest(w, "Invalid file upload")
			return nil, nil, false
		}
		files[field] = gallery.NewFile(fh.Filename, fh.Size, fh.Header.Get("Content-Type"), f)
	}

	return &req, files, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEstimateNotFound):
		response.NotFound(w, "Estimate not found")
	case errors.Is(err, ErrMainPhotoRequired):
		response.Error(w, http.StatusBadRequest, "MAIN_PHOTO_REQUIRED", "Main photo is required")
	case errors.Is(err, ErrTooManySubPhotos):
		response.Error(w, http.StatusBadRequest, "TOO_MANY_SUB_PHOTOS", "Too many sub photos")
	case errors.Is(err, ErrInvalidPhotoPlan):
		response.Error(w, http.StatusBadRequest, "INVALID_PHOTO_PLAN", err.Error())
	case errors.Is(err, storage.ErrFileTooLarge):
		response.Error(w, http.StatusBadRequest, "FILE_TOO_LARGE", "Photo exceeds the maximum size")
	case errors.Is(err, storage.ErrInvalidMimeType):
		response.Error(w, http.StatusBadRequest, "INVALID_FILE_TYPE", "Photo must be a JPEG, PNG, WebP or GIF image")
	case errors.Is(err, storage.ErrEmptyFile):
		response.Error(w, http.StatusBadRequest, "EMPTY_FILE", "Uploaded photo is empty")
	case errors.Is(err, ErrPhotoUploadFailed):
		log.Error().Err(err).Msg("photo upload failed")
		response.Error(w, http.StatusBadGateway, "PHOTO_UPLOAD_FAILED", "Failed to store photo")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("estimate request failed")
		response.InternalError(w)
	}
}
