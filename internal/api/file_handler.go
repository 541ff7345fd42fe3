package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/banterhq/cubby/internal/auth"
	"github.com/banterhq/cubby/internal/service"
)

// FileHandler handles attachment upload, serving, and deletion endpoints.
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// Upload handles POST /files. The request must carry exactly one file, in
// the "file" multipart field; requests with more than one file anywhere in
// the form are rejected outright.
func (h *FileHandler) Upload(c echo.Context) error {
	userID := auth.GetUserID(c)

	form, err := c.MultipartForm()
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
	}

	total := 0
	for _, headers := range form.File {
		total += len(headers)
	}
	if total > 1 {
		return Error(c, http.StatusBadRequest, "TOO_MANY_FILES", "upload exactly one file per request")
	}
	parts := form.File["file"]
	if len(parts) == 0 {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
	}
	part := parts[0]

	src, err := part.Open()
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	defer src.Close()

	att, err := h.files.Upload(c.Request().Context(), userID, service.FileUpload{
		Filename:    part.Filename,
		ContentType: part.Header.Get("Content-Type"),
		Size:        part.Size,
		Content:     src,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return successJSON(c, http.StatusOK, att.View())
}

// Download handles GET /files/:filename/download. On success the client is
// redirected to a short-lived signed URL that forces a download under the
// file's original name.
func (h *FileHandler) Download(c echo.Context) error {
	userID := auth.GetUserID(c)

	url, err := h.files.DownloadURL(c.Request().Context(), userID, c.Param("filename"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusFound, url)
}

// View handles GET /files/:filename/view. Same resolution as Download, but
// the signed URL serves the file inline and only previewable types qualify.
func (h *FileHandler) View(c echo.Context) error {
	userID := auth.GetUserID(c)

	url, err := h.files.ViewURL(c.Request().Context(), userID, c.Param("filename"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusFound, url)
}

// Delete handles DELETE /files/:id. Owner-only.
func (h *FileHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
	}

	userID := auth.GetUserID(c)

	if err := h.files.Delete(c.Request().Context(), userID, id); err != nil {
		return mapServiceError(c, err)
	}

	return successJSON(c, http.StatusOK, map[string]bool{"deleted": true})
}
