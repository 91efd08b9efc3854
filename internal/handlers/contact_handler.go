package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// @Summary List Contacts
// @Tags Contacts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search name, email or phone"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /contacts [get]
func (h *ContactHandler) Index(c *gin.Context) {
	query := listQuery(c)
	query.SortDir = c.DefaultQuery("sort_direction", "asc")

	contacts, total, err := h.contactService.List(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "pagination": pagination(query, total)})
}

// @Summary Get Contact
// @Tags Contacts
// @Produce json
// @Param contact_id path string true "Contact ID"
// @Success 200 {object} models.Contact
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contacts/{contact_id} [get]
func (h *ContactHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "contact_id")
	if !ok {
		return
	}
	contact, err := h.contactService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// @Summary Create Contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body services.ContactInput true "Contact"
// @Success 201 {object} models.Contact
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var input services.ContactInput
	if err := BindNestedOrFlat(c, "contact", &input); err != nil {
		badRequest(c, err)
		return
	}
	contact, err := h.contactService.Create(c.Request.Context(), middleware.GetUserID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"contact": contact})
}

// @Summary Update Contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param contact_id path string true "Contact ID"
// @Param request body services.ContactInput true "Contact"
// @Success 200 {object} models.Contact
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contacts/{contact_id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "contact_id")
	if !ok {
		return
	}
	var input services.ContactInput
	if err := BindNestedOrFlat(c, "contact", &input); err != nil {
		badRequest(c, err)
		return
	}
	contact, err := h.contactService.Update(c.Request.Context(), middleware.GetUserID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

// @Summary Delete Contact
// @Description Deletes a contact. Its transactions keep the name but lose the link.
// @Tags Contacts
// @Param contact_id path string true "Contact ID"
// @Success 204
// @Security BearerAuth
// @Router /contacts/{contact_id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "contact_id")
	if !ok {
		return
	}
	if err := h.contactService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
