package media

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mkamel/groupshare/pkg/logger"
	"github.com/mkamel/groupshare/pkg/middleware"
	"github.com/mkamel/groupshare/pkg/response"
)

// Handler handles HTTP requests for media operations
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

// NewHandler creates a new media handler
func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// Routes returns the router for media endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/upload/{groupId}", h.Upload)
	r.Get("/{groupId}", h.ListByGroup)
	r.Get("/download/{mediaId}", h.Download)

	return r
}

// Upload handles POST /media/upload/{groupId}
// @Summary      Upload media to a group
// @Description  Upload a file into the group feed; the caller must be a member
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Param        media formData file true "File to upload"
// @Success      201 {object} response.APIResponse{data=UploadResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /media/upload/{groupId} [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("media")
	if err != nil {
		response.BadRequest(w, "No file uploaded")
		return
	}
	defer file.Close()

	fileType := header.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}

	m, err := h.service.Upload(r.Context(), userID, groupID, file, header.Filename, fileType)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			response.Forbidden(w, err.Error())
			return
		}
		logger.L.Error("media upload failed",
			zap.Int64("group_id", groupID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		response.InternalError(w, "Failed to upload file")
		return
	}

	response.JSON(w, http.StatusCreated, &UploadResponse{
		MediaID: m.ID,
		Message: "File uploaded successfully",
	})
}

// ListByGroup handles GET /media/{groupId}
// @Summary      List group media
// @Description  Get all media metadata for a group; the caller must be a member
// @Tags         media
// @Produce      json
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MediaResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /media/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	items, err := h.service.ListByGroup(r.Context(), userID, groupID)
	if err != nil {
		if errors.Is(err, ErrNotMember) {
			response.Forbidden(w, err.Error())
			return
		}
		logger.L.Error("media listing failed",
			zap.Int64("group_id", groupID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		response.InternalError(w, "Failed to fetch media")
		return
	}

	mediaResponses := make([]*MediaResponse, len(items))
	for i, m := range items {
		mediaResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, mediaResponses)
}

// Download handles GET /media/download/{mediaId}
// @Summary      Download a media file
// @Description  Stream a stored file; the caller must be a member of the owning group
// @Tags         media
// @Produce      octet-stream
// @Param        mediaId path int true "Media ID"
// @Success      200 {file} binary
// @Failure      403 {object} response.APIResponse
// @Router       /media/download/{mediaId} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	mediaID, err := strconv.ParseInt(chi.URLParam(r, "mediaId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid media ID")
		return
	}

	m, err := h.service.GetForDownload(r.Context(), userID, mediaID)
	if err != nil {
		if errors.Is(err, ErrNotAllowed) {
			response.Forbidden(w, err.Error())
			return
		}
		logger.L.Error("media download failed",
			zap.Int64("media_id", mediaID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		response.InternalError(w, "Failed to fetch media")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.FileName))
	w.Header().Set("Content-Type", m.FileType)
	http.ServeFile(w, r, m.FilePath)
}
