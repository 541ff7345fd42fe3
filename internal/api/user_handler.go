package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/banterhq/cubby/internal/auth"
	"github.com/banterhq/cubby/internal/database"
	"github.com/banterhq/cubby/internal/service"
)

// UserHandler handles user profile endpoints: avatar management and
// account deletion.
type UserHandler struct {
	users   database.UserRepository
	service *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users database.UserRepository, svc *service.UserService) *UserHandler {
	return &UserHandler{users: users, service: svc}
}

// GetMe handles GET /users/@me.
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := auth.GetUserID(c)

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	if user == nil {
		return errorJSON(c, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	}

	return successJSON(c, http.StatusOK, user)
}

// SetAvatar handles PUT /users/@me/avatar. The image arrives in the "file"
// multipart field and replaces any previous avatar.
func (h *UserHandler) SetAvatar(c echo.Context) error {
	userID := auth.GetUserID(c)

	part, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
	}

	src, err := part.Open()
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
	defer src.Close()

	user, err := h.service.SetAvatar(c.Request().Context(), userID, service.FileUpload{
		Filename:    part.Filename,
		ContentType: part.Header.Get("Content-Type"),
		Size:        part.Size,
		Content:     src,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	return successJSON(c, http.StatusOK, user)
}

// GetAvatar handles GET /users/:id/avatar with a 302 to a short-lived
// inline URL. Any authenticated user may view avatars.
func (h *UserHandler) GetAvatar(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid user ID")
	}

	url, err := h.service.AvatarURL(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Redirect(http.StatusFound, url)
}

// ClearAvatar handles DELETE /users/@me/avatar.
func (h *UserHandler) ClearAvatar(c echo.Context) error {
	userID := auth.GetUserID(c)

	if err := h.service.ClearAvatar(c.Request().Context(), userID); err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, map[string]bool{"deleted": true})
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteMe handles DELETE /users/@me. The account password must be
// confirmed in the body.
func (h *UserHandler) DeleteMe(c echo.Context) error {
	userID := auth.GetUserID(c)

	var req deleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}
	if req.Password == "" {
		return Error(c, http.StatusBadRequest, "MISSING_PASSWORD", "password confirmation is required")
	}

	if err := h.service.DeleteAccount(c.Request().Context(), userID, req.Password); err != nil {
		return mapServiceError(c, err)
	}
	return successJSON(c, http.StatusOK, map[string]bool{"deleted": true})
}
