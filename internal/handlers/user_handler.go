package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary Current User
// @Description Returns the authenticated user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} models.UserResponse
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.userService.FindByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse()})
}

// @Summary Get Settings
// @Description Returns the user's currency and language
// @Tags Users
// @Produce json
// @Success 200 {object} models.Settings
// @Security BearerAuth
// @Router /settings [get]
func (h *UserHandler) Settings(c *gin.Context) {
	settings, err := h.userService.GetSettings(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// @Summary Update Settings
// @Description Partially updates currency and/or language
// @Tags Users
// @Accept json
// @Produce json
// @Param request body models.Settings true "Settings"
// @Success 200 {object} models.Settings
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /settings [put]
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var patch models.Settings
	if err := BindNestedOrFlat(c, "settings", &patch); err != nil {
		badRequest(c, err)
		return
	}

	settings, err := h.userService.UpdateSettings(c.Request.Context(), middleware.GetUserID(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
