package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type BudgetHandler struct {
	budgetService *services.BudgetService
}

func NewBudgetHandler(budgetService *services.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// @Summary List Budgets
// @Tags Budgets
// @Produce json
// @Param month query string false "YYYY-MM, every month when empty"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /budgets [get]
func (h *BudgetHandler) Index(c *gin.Context) {
	budgets, err := h.budgetService.List(c.Request.Context(), middleware.GetUserID(c), c.Query("month"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": budgets})
}

// @Summary Budget Progress
// @Description Spending per budgeted category for a month
// @Tags Budgets
// @Produce json
// @Param month query string false "YYYY-MM, current month when empty"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /budgets/progress [get]
func (h *BudgetHandler) Progress(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = h.budgetService.CurrentMonth()
	}
	progress, err := h.budgetService.Progress(c.Request.Context(), middleware.GetUserID(c), month)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "progress": progress})
}

// @Summary Create Budget
// @Tags Budgets
// @Accept json
// @Produce json
// @Param request body services.BudgetInput true "Budget"
// @Success 201 {object} models.Budget
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var input services.BudgetInput
	if err := BindNestedOrFlat(c, "budget", &input); err != nil {
		badRequest(c, err)
		return
	}
	budget, err := h.budgetService.Create(c.Request.Context(), middleware.GetUserID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// @Summary Update Budget
// @Tags Budgets
// @Accept json
// @Produce json
// @Param budget_id path string true "Budget ID"
// @Param request body services.BudgetInput true "Budget"
// @Success 200 {object} models.Budget
// @Security BearerAuth
// @Router /budgets/{budget_id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "budget_id")
	if !ok {
		return
	}
	var input services.BudgetInput
	if err := BindNestedOrFlat(c, "budget", &input); err != nil {
		badRequest(c, err)
		return
	}
	budget, err := h.budgetService.Update(c.Request.Context(), middleware.GetUserID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// @Summary Delete Budget
// @Tags Budgets
// @Param budget_id path string true "Budget ID"
// @Success 204
// @Security BearerAuth
// @Router /budgets/{budget_id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "budget_id")
	if !ok {
		return
	}
	if err := h.budgetService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
