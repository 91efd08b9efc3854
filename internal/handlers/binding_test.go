package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		wantType    ledger.TransactionType
		wantAmount  string
		expectError bool
	}{
		{
			name:       "Nested Structure",
			key:        "transaction",
			body:       `{"transaction": {"type": "expense", "amount": "12.50", "account": "cash"}}`,
			wantType:   ledger.TypeExpense,
			wantAmount: "12.5",
		},
		{
			name:       "Flat Structure",
			key:        "transaction",
			body:       `{"type": "income", "amount": 900, "account": "bank"}`,
			wantType:   ledger.TypeIncome,
			wantAmount: "900",
		},
		{
			name:       "Missing Key Falls Back To Flat",
			key:        "draft",
			body:       `{"transaction": "ignored", "type": "payment_made", "amount": "40"}`,
			wantType:   ledger.TypePaymentMade,
			wantAmount: "40",
		},
		{
			name:        "Invalid Amount",
			key:         "transaction",
			body:        `{"type": "expense", "amount": "lots"}`,
			expectError: true,
		},
		{
			name:        "Nested but Invalid Content",
			key:         "transaction",
			body:        `{"transaction": {"amount": true}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present but Invalid Type",
			key:         "transaction",
			body:        `{"transaction": "some string"}`,
			expectError: true,
		},
		{
			name:        "Empty Body",
			key:         "transaction",
			body:        "  ",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result services.TransactionInput
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, result.Type)
			assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(result.Amount))
		})
	}
}

func TestBindNestedOrFlat_RestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	body := `{"draft": {"type": "expense"}}`
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(body))

	var result services.TransactionInput
	require.NoError(t, BindNestedOrFlat(c, "draft", &result))

	rest, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(rest))
}
