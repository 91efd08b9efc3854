package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/vantrack-api/internal/config"
	"github.com/sjperalta/vantrack-api/internal/repository"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/sjperalta/vantrack-api/pkg/logger"
)

// Handlers holds all handler instances
type Handlers struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	User        *UserHandler
	Transaction *TransactionHandler
	Balance     *BalanceHandler
	Contact     *ContactHandler
	Draft       *DraftHandler
	Budget      *BudgetHandler
	Assistant   *AssistantHandler
	Export      *ExportHandler
	Job         *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(),
		Auth:        NewAuthHandler(svcs.Auth),
		User:        NewUserHandler(svcs.User),
		Transaction: NewTransactionHandler(svcs.Transaction),
		Balance:     NewBalanceHandler(svcs.Balance),
		Contact:     NewContactHandler(svcs.Contact),
		Draft:       NewDraftHandler(svcs.Draft),
		Budget:      NewBudgetHandler(svcs.Budget),
		Assistant:   NewAssistantHandler(svcs.Assistant, cfg.MaxReceiptBytes),
		Export:      NewExportHandler(svcs.Export),
		Job:         NewJobHandler(svcs.Job),
	}
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, services.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID returns the UUID path parameter name, answering 404 itself when
// it is not a UUID.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": services.ErrNotFound.Error()})
		return "", false
	}
	return id, true
}

// listQuery reads the common pagination and sorting parameters.
func listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 100 {
		query.PerPage = 20
	}
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = c.DefaultQuery("sort_direction", "desc")
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
