package api

import (
	"net/http"
	"strings"

	"ice-breakun/backend/internal/models"
	"ice-breakun/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the /users resource
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutesV1 mounts the user routes on the /api/v1 group
func (h *UserHandler) RegisterRoutesV1(v1 *gin.RouterGroup) {
	users := v1.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		failure(c, err, "User", "fetch users")
		return
	}
	respondData(c, http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		failure(c, err, "User", "fetch user")
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req models.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		validationFailed(c, "Name and email are required")
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		failure(c, err, "User", "create user")
		return
	}
	respondData(c, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	changes := models.UserChanges{
		Name:  supplied(req.Name),
		Email: supplied(req.Email),
	}
	if changes.Empty() {
		validationFailed(c, "Name or email is required")
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, changes)
	if err != nil {
		failure(c, err, "User", "update user")
		return
	}
	respondData(c, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id", "user")
	if !ok {
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), id); err != nil {
		failure(c, err, "User", "delete user")
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "User deleted successfully"})
}

// supplied treats blank strings the same as absent fields
func supplied(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return v
}
