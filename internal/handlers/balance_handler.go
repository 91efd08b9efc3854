package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type BalanceHandler struct {
	balanceService *services.BalanceService
}

func NewBalanceHandler(balanceService *services.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// @Summary Balance Summary
// @Description Cash, bank, credit and loan balances derived from every transaction
// @Tags Balances
// @Produce json
// @Success 200 {object} services.BalanceSummary
// @Security BearerAuth
// @Router /balances [get]
func (h *BalanceHandler) Summary(c *gin.Context) {
	summary, err := h.balanceService.Summary(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balances": summary})
}

// @Summary List Debts
// @Description Receivables and payables with paid, remaining and status
// @Tags Balances
// @Produce json
// @Param direction query string false "receivable or payable"
// @Param status query string false "open, partial or settled"
// @Param contact_id query string false "Contact ID"
// @Param include_settled query bool false "Include settled debts"
// @Param overdue query bool false "Only overdue debts"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /debts [get]
func (h *BalanceHandler) Debts(c *gin.Context) {
	filter := services.DebtFilter{
		Direction:      c.Query("direction"),
		Status:         ledger.DebtStatus(c.Query("status")),
		ContactID:      c.Query("contact_id"),
		IncludeSettled: c.Query("include_settled") == "true",
		OverdueOnly:    c.Query("overdue") == "true",
	}
	switch filter.Direction {
	case "", "receivable", "payable":
	default:
		badRequest(c, errors.New("direction must be receivable or payable"))
		return
	}
	switch filter.Status {
	case "", ledger.StatusOpen, ledger.StatusPartial, ledger.StatusSettled:
	default:
		badRequest(c, errors.New("status must be open, partial or settled"))
		return
	}

	debts, err := h.balanceService.Debts(c.Request.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"debts": debts})
}

// @Summary Contact Ledger
// @Description Every transaction and open debt between the user and one contact
// @Tags Contacts
// @Produce json
// @Param contact_id path string true "Contact ID"
// @Success 200 {object} services.ContactLedger
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contacts/{contact_id}/ledger [get]
func (h *BalanceHandler) ContactLedger(c *gin.Context) {
	id, ok := pathID(c, "contact_id")
	if !ok {
		return
	}
	ledgerView, err := h.balanceService.ContactLedger(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ledger": ledgerView})
}
