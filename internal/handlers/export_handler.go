package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/vantrack-api/internal/middleware"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/internal/services"
)

type ExportHandler struct {
	exportService *services.ExportService
}

func NewExportHandler(exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// @Summary Export Transactions
// @Description Downloads transactions with debt status and balances
// @Tags Exports
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file "export"
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /exports/transactions [get]
func (h *ExportHandler) Transactions(c *gin.Context) {
	var rng services.ExportRange
	var err error
	if v := c.Query("start_date"); v != "" {
		if rng.From, err = time.Parse(models.DateLayout, v); err != nil {
			badRequest(c, fmt.Errorf("invalid start_date %q, expected YYYY-MM-DD", v))
			return
		}
	}
	if v := c.Query("end_date"); v != "" {
		if rng.To, err = time.Parse(models.DateLayout, v); err != nil {
			badRequest(c, fmt.Errorf("invalid end_date %q, expected YYYY-MM-DD", v))
			return
		}
	}

	file, err := h.exportService.ExportTransactions(c.Request.Context(), middleware.GetUserID(c), c.DefaultQuery("format", services.FormatCSV), rng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
