package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"filekeep/internal/server/service"

	"github.com/labstack/echo/v4"
)

// Handler contains the HTTP handlers for the filekeep API.
type Handler struct {
	identity *service.IdentityService
	users    *service.UserService
	files    *service.FileService
	status   *service.StatusService
}

// NewHandler creates a new handler with the given service dependencies.
func NewHandler(identity *service.IdentityService, users *service.UserService, files *service.FileService, status *service.StatusService) *Handler {
	return &Handler{
		identity: identity,
		users:    users,
		files:    files,
		status:   status,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /users.
func (h *Handler) HandleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	user, err := h.users.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// HandleMe handles GET /users/me.
func (h *Handler) HandleMe(c echo.Context) error {
	user, err := h.users.Me(c.Request().Context(), userID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// HandleConnect handles GET /connect.
// Credentials are read from an "Authorization: Basic" header.
func (h *Handler) HandleConnect(c echo.Context) error {
	email, password, ok := c.Request().BasicAuth()
	if !ok {
		return mapServiceError(c, service.ErrUnauthorized)
	}

	token, err := h.identity.Authenticate(c.Request().Context(), email, password)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// HandleDisconnect handles GET /disconnect. The token has already been
// resolved by RequireUser.
func (h *Handler) HandleDisconnect(c echo.Context) error {
	if err := h.identity.Revoke(c.Request().Context(), c.Request().Header.Get(TokenHeader)); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleStatus handles GET /status.
func (h *Handler) HandleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status.Status(c.Request().Context()))
}

// HandleStats handles GET /stats.
func (h *Handler) HandleStats(c echo.Context) error {
	stats, err := h.status.Stats(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": stats.Users,
		"files": stats.Files,
	})
}

// parentParam accepts a parent id sent either as a JSON string or a number.
type parentParam string

func (p *parentParam) UnmarshalJSON(b []byte) error {
	switch {
	case string(b) == "null":
		*p = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = parentParam(s)
	default:
		*p = parentParam(b)
	}
	return nil
}

type createFileRequest struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	ParentID parentParam `json:"parentId"`
	IsPublic bool        `json:"isPublic"`
	Data     string      `json:"data"`
}

// HandleCreateFile handles POST /files.
func (h *Handler) HandleCreateFile(c echo.Context) error {
	var req createFileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	info, err := h.files.Create(c.Request().Context(), userID(c), service.CreateFileInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleShowFile handles GET /files/:id.
func (h *Handler) HandleShowFile(c echo.Context) error {
	info, err := h.files.Show(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleListFiles handles GET /files?parentId=&page=.
func (h *Handler) HandleListFiles(c echo.Context) error {
	infos, err := h.files.Index(c.Request().Context(), userID(c), c.QueryParam("parentId"), c.QueryParam("page"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, infos)
}

// HandlePublish handles PUT /files/:id/publish.
func (h *Handler) HandlePublish(c echo.Context) error {
	info, err := h.files.Publish(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleUnpublish handles PUT /files/:id/unpublish.
func (h *Handler) HandleUnpublish(c echo.Context) error {
	info, err := h.files.Unpublish(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleFileContent handles GET /files/:id/data.
// Identity is optional here; public files are served to anyone.
func (h *Handler) HandleFileContent(c echo.Context) error {
	content, err := h.files.Content(c.Request().Context(), userID(c), c.Param("id"), c.QueryParam("size"))
	if err != nil {
		return mapServiceError(c, err)
	}
	defer content.Body.Close()

	return c.Stream(http.StatusOK, content.ContentType, content.Body)
}

// mapServiceError translates service-layer errors into single-field JSON responses.
func mapServiceError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Msg})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Unauthorized"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Not found"})
	case errors.Is(err, service.ErrFolderContent):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "A folder doesn't have content"})
	case errors.Is(err, service.ErrUserExists):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User already exists"})
	default:
		slog.Error("request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
	}
}
