package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/sjperalta/vantrack-api/internal/storage"
)

const defaultMaxReceiptBytes = 8 << 20

type AssistantHandler struct {
	assistantService *services.AssistantService
	maxReceiptBytes  int64
}

func NewAssistantHandler(assistantService *services.AssistantService, maxReceiptBytes int64) *AssistantHandler {
	if maxReceiptBytes <= 0 {
		maxReceiptBytes = defaultMaxReceiptBytes
	}
	return &AssistantHandler{assistantService: assistantService, maxReceiptBytes: maxReceiptBytes}
}

type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary Parse Text
// @Description Extracts pending drafts from a free-text description
// @Tags Assistant
// @Accept json
// @Produce json
// @Param request body ParseRequest true "Text"
// @Success 201 {object} services.ParseResult
// @Failure 429 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /assistant/parse [post]
func (h *AssistantHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := h.assistantService.ParseText(c.Request.Context(), middleware.GetUserID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Parse Receipt
// @Description Extracts pending drafts from a receipt photo
// @Tags Assistant
// @Accept multipart/form-data
// @Produce json
// @Param receipt formData file true "Receipt image (jpeg, png or gif)"
// @Success 201 {object} services.ParseResult
// @Failure 400 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Security BearerAuth
// @Router /assistant/receipt [post]
func (h *AssistantHandler) Receipt(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxReceiptBytes+1<<10)

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	defer file.Close()

	if header.Size > h.maxReceiptBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "receipt file is too large"})
		return
	}
	if !storage.IsReceiptContentType(header.Header.Get("Content-Type")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt must be a jpeg, png or gif image"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxReceiptBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read receipt file"})
		return
	}

	result, err := h.assistantService.ParseReceipt(c.Request.Context(), middleware.GetUserID(c), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary Insights
// @Description Short advice generated from balances, debts and budgets. Cached per user.
// @Tags Assistant
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} services.Insight
// @Failure 503 {object} map[string]string
// @Security BearerAuth
// @Router /insights [get]
func (h *AssistantHandler) Insights(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if c.Query("refresh") == "true" {
		h.assistantService.InvalidateInsights(userID)
	}

	insight, err := h.assistantService.Insights(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insight": insight})
}
