package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var exportContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

var exportHeader = []string{"Date", "Type", "Account", "Category", "Description", "Contact", "Amount", "Remaining", "Status", "Due Date"}

// ExportRange limits an export to transactions dated in [From, To].
// Zero values leave that side open.
type ExportRange struct {
	From time.Time
	To   time.Time
}

func (r ExportRange) contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// ExportFile is a rendered export.
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

type ExportService struct {
	balances *BalanceService
	now      func() time.Time
}

func NewExportService(balances *BalanceService) *ExportService {
	return &ExportService{balances: balances, now: time.Now}
}

// ExportTransactions renders the user's transactions, with derived debt
// status, followed by the balance summary.
func (s *ExportService) ExportTransactions(ctx context.Context, userID uint, format string, rng ExportRange) (*ExportFile, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, validationError(fmt.Errorf("unsupported export format %q", format))
	}

	snap, err := s.balances.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary, err := s.balances.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TransactionResponse, 0, len(snap.Transactions))
	for i := range snap.Transactions {
		if rng.contains(snap.Transactions[i].Date) {
			rows = append(rows, snap.Transactions[i].ToResponse(snap.Debts))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })

	var data []byte
	switch format {
	case FormatCSV:
		data, err = s.renderCSV(rows, summary)
	case FormatXLSX:
		data, err = s.renderXLSX(rows, summary)
	case FormatPDF:
		data, err = s.renderPDF(rows, summary)
	}
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Data:        data,
		Filename:    fmt.Sprintf("transactions_%s.%s", s.now().Format(models.DateLayout), format),
		ContentType: contentType,
	}, nil
}

func exportRow(r models.TransactionResponse) []string {
	remaining, due, contact := "", "", ""
	if r.RemainingAmount != nil {
		remaining = r.RemainingAmount.StringFixed(2)
	}
	if r.DueDate != nil {
		due = *r.DueDate
	}
	if r.Contact != nil {
		contact = *r.Contact
	}
	return []string{
		r.Date,
		string(r.Type),
		string(r.Account),
		csvSafe(r.Category),
		csvSafe(r.Description),
		csvSafe(contact),
		r.Amount.StringFixed(2),
		remaining,
		string(r.Status),
		due,
	}
}

func summaryRows(summary *BalanceSummary) [][]string {
	return [][]string{
		{"Cash", summary.Cash.StringFixed(2)},
		{"Bank", summary.Bank.StringFixed(2)},
		{"Credit", summary.Credit.StringFixed(2)},
		{"Loan", summary.Loan.StringFixed(2)},
		{"Net worth", summary.NetWorth.StringFixed(2)},
	}
}

func (s *ExportService) renderCSV(rows []models.TransactionResponse, summary *BalanceSummary) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write(exportHeader)
	for _, r := range rows {
		_ = writer.Write(exportRow(r))
	}
	_ = writer.Write([]string{})
	_ = writer.Write([]string{"Balance", "Amount"})
	for _, r := range summaryRows(summary) {
		_ = writer.Write(r)
	}

	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func (s *ExportService) renderXLSX(rows []models.TransactionResponse, summary *BalanceSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Transactions"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	writeRow := func(sheet string, rowNum int, values []string) {
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow(sheet, 1, exportHeader)
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)
	for i, r := range rows {
		writeRow(sheet, i+2, exportRow(r))
		// Amount column as a number so spreadsheet sums work.
		cell, _ := excelize.CoordinatesToCellName(7, i+2)
		amount, _ := r.Amount.Float64()
		_ = f.SetCellValue(sheet, cell, amount)
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	writeRow(summarySheet, 1, []string{"Balance", "Amount"})
	_ = f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, r := range summaryRows(summary) {
		writeRow(summarySheet, i+2, r)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) renderPDF(rows []models.TransactionResponse, summary *BalanceSummary) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Transactions")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 8, "Generated "+s.now().Format("2006-01-02 15:04"))
	pdf.Ln(10)

	widths := []float64{22, 32, 16, 28, 62, 36, 22, 22, 18, 22}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(224, 224, 224)
	for i, h := range exportHeader {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		for i, v := range exportRow(r) {
			align := "L"
			if i == 6 || i == 7 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, truncate(tr(v), 40), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Balances")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, r := range summaryRows(summary) {
		pdf.Cell(40, 7, r[0]+":")
		pdf.CellFormat(30, 7, r[1], "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "..."
}
