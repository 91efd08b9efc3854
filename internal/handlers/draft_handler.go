package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type DraftHandler struct {
	draftService *services.DraftService
}

func NewDraftHandler(draftService *services.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// @Summary List Drafts
// @Description Drafts in one action status, pending by default. status=all returns every draft.
// @Tags Drafts
// @Produce json
// @Param status query string false "pending, confirmed, discarded or all" default(pending)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /drafts [get]
func (h *DraftHandler) Index(c *gin.Context) {
	status := c.DefaultQuery("status", models.DraftStatusPending)
	if status == "all" {
		status = ""
	}

	drafts, err := h.draftService.List(c.Request.Context(), middleware.GetUserID(c), status)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]models.DraftResponse, 0, len(drafts))
	for i := range drafts {
		responses = append(responses, drafts[i].ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"drafts": responses})
}

// @Summary Get Draft
// @Tags Drafts
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} models.DraftResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{draft_id} [get]
func (h *DraftHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "draft_id")
	if !ok {
		return
	}
	draft, err := h.draftService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft.ToResponse()})
}

// @Summary Create Draft
// @Description Stores a pending draft. Nothing is booked until it is confirmed.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param request body services.TransactionInput true "Proposed transaction"
// @Success 201 {object} models.DraftResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "draft", &input); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := h.draftService.Create(c.Request.Context(), middleware.GetUserID(c), &input, models.DraftSourceManual)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"draft": draft.ToResponse()})
}

// @Summary Update Draft
// @Description Edits a pending draft. Confirmed and discarded drafts answer 409.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Param request body services.TransactionInput true "Proposed transaction"
// @Success 200 {object} models.DraftResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{draft_id} [put]
func (h *DraftHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "draft_id")
	if !ok {
		return
	}
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "draft", &input); err != nil {
		badRequest(c, err)
		return
	}
	draft, err := h.draftService.Update(c.Request.Context(), middleware.GetUserID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft.ToResponse()})
}

// @Summary Confirm Draft
// @Description Books the draft as exactly one transaction
// @Tags Drafts
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} services.ConfirmResult
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{draft_id}/confirm [post]
func (h *DraftHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "draft_id")
	if !ok {
		return
	}
	result, err := h.draftService.Confirm(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Discard Draft
// @Tags Drafts
// @Produce json
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} models.DraftResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /drafts/{draft_id}/discard [post]
func (h *DraftHandler) Discard(c *gin.Context) {
	id, ok := pathID(c, "draft_id")
	if !ok {
		return
	}
	draft, err := h.draftService.Discard(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft.ToResponse()})
}
