package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type TransactionHandler struct {
	transactionService *services.TransactionService
}

func NewTransactionHandler(transactionService *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// @Summary List Transactions
// @Description Paginated transactions with derived remaining amount and status on debts
// @Tags Transactions
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search description, category or contact"
// @Param type query string false "Transaction type"
// @Param account query string false "cash or bank"
// @Param category query string false "Category"
// @Param contact_id query string false "Contact ID"
// @Param debts query bool false "Only receivables and payables"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param sort_by query string false "date, amount, created_at"
// @Param sort_direction query string false "asc or desc"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /transactions [get]
func (h *TransactionHandler) Index(c *gin.Context) {
	query := listQuery(c)
	for _, key := range []string{"type", "account", "category", "contact_id", "debts", "start_date", "end_date"} {
		query.Filters[key] = c.Query(key)
	}

	txns, total, err := h.transactionService.List(c.Request.Context(), middleware.GetUserID(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txns,
		"pagination":   pagination(query, total),
	})
}

// @Summary Get Transaction
// @Tags Transactions
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Success 200 {object} models.TransactionResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id} [get]
func (h *TransactionHandler) Show(c *gin.Context) {
	id, ok := pathID(c, "transaction_id")
	if !ok {
		return
	}
	txn, err := h.transactionService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// @Summary Create Transaction
// @Description Records a transaction. Payments may link to the receivable or payable they settle.
// @Tags Transactions
// @Accept json
// @Produce json
// @Param request body services.TransactionInput true "Transaction"
// @Success 201 {object} models.TransactionResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "transaction", &input); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.transactionService.Create(c.Request.Context(), middleware.GetUserID(c), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": txn})
}

// @Summary Update Transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Param transaction_id path string true "Transaction ID"
// @Param request body services.TransactionInput true "Transaction"
// @Success 200 {object} models.TransactionResponse
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "transaction_id")
	if !ok {
		return
	}
	var input services.TransactionInput
	if err := BindNestedOrFlat(c, "transaction", &input); err != nil {
		badRequest(c, err)
		return
	}

	txn, err := h.transactionService.Update(c.Request.Context(), middleware.GetUserID(c), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// @Summary Delete Transaction
// @Description Deletes a transaction. Payments linked to it stay, with a dangling link.
// @Tags Transactions
// @Param transaction_id path string true "Transaction ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /transactions/{transaction_id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "transaction_id")
	if !ok {
		return
	}
	if err := h.transactionService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
