package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/vantrack-api/internal/ledger"
	"github.com/sjperalta/vantrack-api/internal/metrics"
	"github.com/sjperalta/vantrack-api/internal/models"
	"github.com/sjperalta/vantrack-api/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	maxAssistantTextLength = 4000
	limiterIdleExpiration  = 30 * time.Minute
)

// ReceiptStore persists receipt images.
type ReceiptStore interface {
	SaveBytes(data []byte, ext, subDir string) (string, error)
	Delete(relativePath string) error
}

// AssistantConfig tunes the assistant.
type AssistantConfig struct {
	RatePerMinute int
	InsightsTTL   time.Duration
}

// AssistantService turns free text and receipt photos into pending drafts
// and produces spending insights. Nothing it produces is booked until the
// user confirms the draft.
type AssistantService struct {
	model    LanguageModel
	drafts   *DraftService
	balances *BalanceService
	budgets  *BudgetService
	images   *ImageService
	store    ReceiptStore

	limiters *cache.Cache
	limitMu  sync.Mutex
	perMin   int
	insights *cache.Cache
	now      func() time.Time
}

// NewAssistantService creates the assistant. A nil model makes every call
// return ErrUnavailable.
func NewAssistantService(model LanguageModel, drafts *DraftService, balances *BalanceService, budgets *BudgetService, images *ImageService, store ReceiptStore, cfg AssistantConfig) *AssistantService {
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 10
	}
	if cfg.InsightsTTL <= 0 {
		cfg.InsightsTTL = time.Hour
	}
	return &AssistantService{
		model:    model,
		drafts:   drafts,
		balances: balances,
		budgets:  budgets,
		images:   images,
		store:    store,
		limiters: cache.New(limiterIdleExpiration, 2*limiterIdleExpiration),
		perMin:   cfg.RatePerMinute,
		insights: cache.New(cfg.InsightsTTL, 2*cfg.InsightsTTL),
		now:      time.Now,
	}
}

// proposal is one transaction suggested by the model.
type proposal struct {
	Date        string          `json:"date"`
	DueDate     *string         `json:"due_date"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Account     string          `json:"account"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Contact     *string         `json:"contact"`
}

// SkippedProposal reports a model suggestion that failed validation.
type SkippedProposal struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ParseResult is returned by ParseText and ParseReceipt.
type ParseResult struct {
	Drafts  []models.DraftResponse `json:"drafts"`
	Skipped []SkippedProposal      `json:"skipped"`
}

// Insight is short advice generated from the user's ledger.
type Insight struct {
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

// ParseText extracts draft proposals from a free-text description.
func (s *AssistantService) ParseText(ctx context.Context, userID uint, text string) (*ParseResult, error) {
	text = sanitizeText(text)
	if text == "" {
		return nil, validationError(errors.New("text is required"))
	}
	if len(text) > maxAssistantTextLength {
		return nil, validationError(fmt.Errorf("text exceeds %d characters", maxAssistantTextLength))
	}
	if err := s.ready(userID); err != nil {
		return nil, err
	}

	raw, err := s.model.Generate(ctx, s.extractionPrompt("User input:\n"+text), nil, "", true)
	if err != nil {
		metrics.AssistantCalls.WithLabelValues("parse_text", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.AssistantCalls.WithLabelValues("parse_text", "ok").Inc()

	return s.storeProposals(ctx, userID, raw, &text, nil)
}

// ParseReceipt extracts draft proposals from a receipt photo. The
// normalized image is kept and referenced by every resulting draft.
func (s *AssistantService) ParseReceipt(ctx context.Context, userID uint, image []byte) (*ParseResult, error) {
	if len(image) == 0 {
		return nil, validationError(errors.New("image is required"))
	}
	if err := s.ready(userID); err != nil {
		return nil, err
	}

	prepared, err := s.images.PrepareReceipt(image)
	if err != nil {
		return nil, validationError(err)
	}

	raw, err := s.model.Generate(ctx, s.extractionPrompt("The attached image is a receipt or invoice."), prepared, receiptMIMEType, true)
	if err != nil {
		metrics.AssistantCalls.WithLabelValues("parse_receipt", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.AssistantCalls.WithLabelValues("parse_receipt", "ok").Inc()

	path, err := s.store.SaveBytes(prepared, ".jpg", fmt.Sprintf("receipts/%d", userID))
	if err != nil {
		return nil, err
	}
	result, err := s.storeProposals(ctx, userID, raw, nil, &path)
	if err != nil || len(result.Drafts) == 0 {
		if delErr := s.store.Delete(path); delErr != nil {
			logger.Warn("Failed to remove unused receipt", "path", path, "error", delErr)
		}
	}
	return result, err
}

// storeProposals validates each proposal and saves the valid ones as
// pending assistant drafts in one batch.
func (s *AssistantService) storeProposals(ctx context.Context, userID uint, raw string, rawInput, receiptPath *string) (*ParseResult, error) {
	var proposals []proposal
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &proposals); err != nil {
		logger.Warn("Assistant returned unparseable output", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: assistant returned malformed output", ErrUnavailable)
	}

	result := &ParseResult{Drafts: []models.DraftResponse{}, Skipped: []SkippedProposal{}}
	drafts := make([]models.Draft, 0, len(proposals))
	for i, p := range proposals {
		draft, err := s.drafts.build(userID, p.input(), models.DraftSourceAssistant)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedProposal{Index: i, Reason: err.Error()})
			continue
		}
		draft.RawInput = rawInput
		draft.ReceiptPath = receiptPath
		drafts = append(drafts, *draft)
	}

	if len(drafts) > 0 {
		if err := s.drafts.repo.CreateBatch(ctx, drafts); err != nil {
			return nil, translateRepoError(err)
		}
	}
	for i := range drafts {
		metrics.DraftEvents.WithLabelValues("created", models.DraftSourceAssistant).Inc()
		result.Drafts = append(result.Drafts, drafts[i].ToResponse())
	}

	logger.Info("Assistant drafts created", "user_id", userID, "drafts", len(drafts), "skipped", len(result.Skipped))
	return result, nil
}

func (p proposal) input() *TransactionInput {
	return &TransactionInput{
		Date:        p.Date,
		DueDate:     p.DueDate,
		Amount:      p.Amount,
		Type:        ledger.TransactionType(strings.TrimSpace(p.Type)),
		Account:     ledger.Account(strings.ToLower(strings.TrimSpace(p.Account))),
		Category:    p.Category,
		Description: p.Description,
		Contact:     p.Contact,
	}
}

// Insights returns short advice on the user's finances, cached per user.
func (s *AssistantService) Insights(ctx context.Context, userID uint) (*Insight, error) {
	key := fmt.Sprintf("insights:%d", userID)
	if cached, ok := s.insights.Get(key); ok {
		insight := *cached.(*Insight)
		insight.Cached = true
		return &insight, nil
	}
	if err := s.ready(userID); err != nil {
		return nil, err
	}

	summary, err := s.balances.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	debts, err := s.balances.Debts(ctx, userID, DebtFilter{})
	if err != nil {
		return nil, err
	}
	progress, err := s.budgets.Progress(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"balances": summary,
		"debts":    debts,
		"budgets":  progress,
	})
	if err != nil {
		return nil, err
	}

	text, err := s.model.Generate(ctx, insightsPrompt+string(payload), nil, "", false)
	if err != nil {
		metrics.AssistantCalls.WithLabelValues("insights", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.AssistantCalls.WithLabelValues("insights", "ok").Inc()

	insight := &Insight{Text: strings.TrimSpace(text), GeneratedAt: s.now()}
	s.insights.SetDefault(key, insight)
	return insight, nil
}

// InvalidateInsights drops cached advice, e.g. after a large import.
func (s *AssistantService) InvalidateInsights(userID uint) {
	s.insights.Delete(fmt.Sprintf("insights:%d", userID))
}

func (s *AssistantService) ready(userID uint) error {
	if s.model == nil {
		return fmt.Errorf("%w: assistant is not configured", ErrUnavailable)
	}
	if !s.limiter(userID).Allow() {
		metrics.AssistantCalls.WithLabelValues("any", "rate_limited").Inc()
		return ErrRateLimited
	}
	return nil
}

func (s *AssistantService) limiter(userID uint) *rate.Limiter {
	key := fmt.Sprintf("limiter:%d", userID)
	s.limitMu.Lock()
	defer s.limitMu.Unlock()

	if v, ok := s.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		s.limiters.SetDefault(key, l)
		return l
	}
	l := rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMin)), s.perMin)
	s.limiters.SetDefault(key, l)
	return l
}

func (s *AssistantService) extractionPrompt(input string) string {
	types := make([]string, 0, len(ledger.AllTypes))
	for _, t := range ledger.AllTypes {
		types = append(types, string(t))
	}

	var b strings.Builder
	b.WriteString("You extract personal finance transactions for a ledger app.\n\n")
	fmt.Fprintf(&b, "Today is %s.\n\n", s.now().Format(models.DateLayout))
	b.WriteString("Output STRICT JSON only: an array of objects, possibly empty.\n")
	b.WriteString("Each object has these fields:\n")
	b.WriteString("- \"date\": string \"YYYY-MM-DD\"\n")
	b.WriteString("- \"due_date\": string \"YYYY-MM-DD\" or null (only for debts)\n")
	b.WriteString("- \"amount\": positive number with at most 2 decimals\n")
	fmt.Fprintf(&b, "- \"type\": one of %s\n", strings.Join(types, ", "))
	b.WriteString("- \"account\": \"cash\" or \"bank\" (empty for credit_receivable and credit_payable)\n")
	b.WriteString("- \"category\": short lowercase category such as food, fuel, repairs, salary\n")
	b.WriteString("- \"description\": short description\n")
	b.WriteString("- \"contact\": person or business name, or null\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Money lent to someone is loan_receivable, money borrowed is loan_payable.\n")
	b.WriteString("- Goods or services sold on credit are credit_receivable, bought on credit are credit_payable.\n")
	b.WriteString("- Never output negative amounts; the type carries the direction.\n")
	b.WriteString("- Do NOT wrap the response in code fences.\n\n")
	b.WriteString(input)
	return b.String()
}

const insightsPrompt = "You are a concise personal finance coach for a small business owner. " +
	"Given the JSON below with balances, open debts and this month's budgets, write at most five short " +
	"Markdown bullet points: overdue debts to chase, budgets at risk, and one suggestion about cash versus bank. " +
	"Do not invent numbers that are not in the data.\n\n"
