package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFixture(t *testing.T) (*ExportService, *ledgerFixture) {
	t.Helper()
	f := newLedgerFixture(t)
	ctx := context.Background()

	debt, err := f.txnSvc.Create(ctx, testUser, &TransactionInput{
		Date: "2025-02-10", Type: ledger.TypeCreditReceivable, Amount: dec("100"), Contact: strPtr("Alice"),
		Description: "Moving job", DueDate: strPtr("2025-03-15"),
	})
	require.NoError(t, err)
	inputs := []TransactionInput{
		{Date: "2025-02-20", Type: ledger.TypePaymentReceived, Amount: dec("40"), Account: ledger.AccountCash, LinkedTransactionID: &debt.ID},
		{Date: "2025-01-05", Type: ledger.TypeIncome, Amount: dec("500"), Account: ledger.AccountBank, Description: "=HYPERLINK(\"x\")"},
	}
	for i := range inputs {
		_, err := f.txnSvc.Create(ctx, testUser, &inputs[i])
		require.NoError(t, err)
	}

	svc := NewExportService(f.balances)
	svc.now = func() time.Time { return f.now }
	return svc, f
}

func TestExportService_CSV(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportTransactions(context.Background(), testUser, FormatCSV, ExportRange{})
	require.NoError(t, err)
	assert.Equal(t, "transactions_2025-03-01.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	reader := csv.NewReader(bytes.NewReader(file.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, exportHeader, records[0])
	require.GreaterOrEqual(t, len(records), 4)

	income := records[1]
	assert.Equal(t, "2025-01-05", income[0])
	assert.Equal(t, "'=HYPERLINK(\"x\")", income[4], "formula cells are neutralized")

	debt := records[2]
	assert.Equal(t, "credit_receivable", debt[1])
	assert.Equal(t, "Alice", debt[5])
	assert.Equal(t, "100.00", debt[6])
	assert.Equal(t, "60.00", debt[7])
	assert.Equal(t, string(ledger.StatusPartial), debt[8])
	assert.Equal(t, "2025-03-15", debt[9])

	last := records[len(records)-1]
	assert.Equal(t, []string{"Net worth", "600.00"}, last)
}

func TestExportService_Range(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportTransactions(context.Background(), testUser, FormatCSV, ExportRange{
		From: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(file.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "2025-02-10", records[1][0])
	assert.Equal(t, "Balance", records[2][0], "only one transaction in range")
}

func TestExportService_XLSX(t *testing.T) {
	svc, _ := newExportFixture(t)

	file, err := svc.ExportTransactions(context.Background(), testUser, FormatXLSX, ExportRange{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	header, err := book.GetCellValue("Transactions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Date", header)

	amount, err := book.GetCellValue("Transactions", "G2")
	require.NoError(t, err)
	assert.Equal(t, "500", amount)

	net, err := book.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "600.00", net)
}

func TestExportService_PDFAndUnknownFormat(t *testing.T) {
	svc, _ := newExportFixture(t)
	ctx := context.Background()

	file, err := svc.ExportTransactions(ctx, testUser, FormatPDF, ExportRange{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
	assert.Equal(t, "application/pdf", file.ContentType)

	_, err = svc.ExportTransactions(ctx, testUser, "docx", ExportRange{})
	assert.ErrorIs(t, err, ErrValidation)
}
