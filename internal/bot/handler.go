// Package bot routes incoming LINE text messages: stats and budget commands
// are matched first, anything else is treated as a quick-text expense entry.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/line"
	"github.com/maialona/line-budget-bot/internal/models"
	"github.com/maialona/line-budget-bot/internal/notifications"
	"github.com/maialona/line-budget-bot/internal/quicktext"
	"github.com/maialona/line-budget-bot/internal/report"
	"github.com/maialona/line-budget-bot/internal/repository"
	"github.com/maialona/line-budget-bot/internal/stats"
)

var budgetCommandPattern = regexp.MustCompile(`設定預算\s*([0-9]+(?:\.[0-9]+)?)`)

type Replier interface {
	ReplyText(ctx context.Context, replyToken, text string) error
}

type UserStore interface {
	Ensure(ctx context.Context, lineUserID, currency string) (models.User, error)
	SetMonthlyBudget(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (models.User, error)
}

type CategoryStore interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, name string) (models.Category, error)
	GetOrCreateDefault(ctx context.Context, userID uuid.UUID, name string) (models.Category, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, params repository.CreateExpenseParams) (models.Expense, error)
	ListForPeriod(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Expense, error)
}

type Handler struct {
	users      UserStore
	categories CategoryStore
	expenses   ExpenseStore
	replier    Replier
	hub        *notifications.Hub
	logger     *slog.Logger

	defaultCategory string
	defaultCurrency string
	now             func() time.Time
}

// NewHandler wires the bot against its stores and the reply channel.
func NewHandler(users UserStore, categories CategoryStore, expenses ExpenseStore, replier Replier, hub *notifications.Hub, logger *slog.Logger, defaultCategory, defaultCurrency string) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		users:           users,
		categories:      categories,
		expenses:        expenses,
		replier:         replier,
		hub:             hub,
		logger:          logger,
		defaultCategory: defaultCategory,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

// HandleEvents processes one webhook delivery. Events are independent; a
// failure on one is logged and does not stop the others.
func (h *Handler) HandleEvents(ctx context.Context, events []line.Event) {
	for _, event := range events {
		switch {
		case event.Type == line.EventTypeFollow:
			h.handleFollow(ctx, event)
		case event.IsTextMessage():
			h.handleText(ctx, event)
		}
	}
}

func (h *Handler) handleFollow(ctx context.Context, event line.Event) {
	if event.Source.UserID == "" {
		return
	}

	if _, err := h.users.Ensure(ctx, event.Source.UserID, h.defaultCurrency); err != nil {
		h.logger.Error("ensure user on follow failed",
			slog.String("line_user_id", event.Source.UserID),
			slog.String("error", err.Error()))
		return
	}

	h.reply(ctx, event.ReplyToken, msgWelcome)
}

func (h *Handler) handleText(ctx context.Context, event line.Event) {
	if event.Source.UserID == "" {
		return
	}

	user, err := h.users.Ensure(ctx, event.Source.UserID, h.defaultCurrency)
	if err != nil {
		h.logger.Error("ensure user failed",
			slog.String("line_user_id", event.Source.UserID),
			slog.String("error", err.Error()))
		return
	}

	text := strings.TrimSpace(event.Message.Text)

	switch {
	case text == "記帳" || text == "+":
		h.reply(ctx, event.ReplyToken, msgQuickEntryGuide)
	case strings.Contains(text, "本月統計"):
		h.replyMonthlySummary(ctx, user, event.ReplyToken)
	case strings.Contains(text, "設定預算"):
		h.setBudget(ctx, user, event.ReplyToken, text)
	default:
		h.recordQuickExpense(ctx, user, event.ReplyToken, text)
	}
}

func (h *Handler) replyMonthlySummary(ctx context.Context, user models.User, replyToken string) {
	now := h.now()
	st, status, err := h.monthlyStats(ctx, user, now)
	if err != nil {
		h.logger.Error("monthly stats failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		h.reply(ctx, replyToken, msgStatsFailed)
		return
	}

	h.reply(ctx, replyToken, report.MonthlySummaryText(st, status, now))
}

func (h *Handler) setBudget(ctx context.Context, user models.User, replyToken, text string) {
	match := budgetCommandPattern.FindStringSubmatch(text)
	if match == nil {
		h.reply(ctx, replyToken, msgBudgetUsage)
		return
	}

	amount, err := decimal.NewFromString(match[1])
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		h.reply(ctx, replyToken, msgInvalidBudget)
		return
	}

	updated, err := h.users.SetMonthlyBudget(ctx, user.ID, amount)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidBudget) {
			h.reply(ctx, replyToken, msgInvalidBudget)
			return
		}
		h.logger.Error("set budget failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		h.reply(ctx, replyToken, msgBudgetFailed)
		return
	}

	h.publish(updated.ID, notifications.EventBudgetUpdated, amount)

	now := h.now()
	st, status, err := h.monthlyStats(ctx, updated, now)
	if err != nil {
		h.logger.Error("monthly stats after budget update failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		h.reply(ctx, replyToken, msgBudgetFailed)
		return
	}

	h.reply(ctx, replyToken, report.BudgetSetText(amount, report.MonthlySummaryText(st, status, now)))
}

func (h *Handler) recordQuickExpense(ctx context.Context, user models.User, replyToken, text string) {
	draft, err := quicktext.Parse(text)
	if err != nil {
		switch {
		case errors.Is(err, quicktext.ErrNoAmount):
			h.reply(ctx, replyToken, msgNoAmount)
		case errors.Is(err, quicktext.ErrInvalidAmount):
			h.reply(ctx, replyToken, msgInvalidAmount)
		default:
			h.reply(ctx, replyToken, msgQuickEntryFailed)
		}
		return
	}

	category, err := h.resolveCategory(ctx, user.ID, draft.CategoryToken)
	if err != nil {
		h.logger.Error("resolve category failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		h.reply(ctx, replyToken, msgQuickEntryFailed)
		return
	}

	var note *string
	if draft.Note != "" {
		note = &draft.Note
	}

	expense, err := h.expenses.Create(ctx, repository.CreateExpenseParams{
		UserID:     user.ID,
		CategoryID: uuid.NullUUID{UUID: category.ID, Valid: true},
		Amount:     draft.Amount,
		Currency:   user.Currency,
		SpentAt:    h.now(),
		Note:       note,
		Source:     models.ExpenseSourceQuickText,
		RawText:    &draft.RawText,
	})
	if err != nil {
		h.logger.Error("create expense failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		h.reply(ctx, replyToken, msgQuickEntryFailed)
		return
	}

	h.publish(user.ID, notifications.EventExpenseCreated, expense)

	// The budget tail needs the month's spend including this entry.
	var status stats.BudgetStatus
	spent := draft.Amount
	if user.MonthlyBudgetAmount.Valid {
		st, evaluated, err := h.monthlyStats(ctx, user, h.now())
		if err != nil {
			h.logger.Error("monthly stats after expense failed",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
			h.reply(ctx, replyToken, msgQuickEntryFailed)
			return
		}
		spent = st.Total
		status = evaluated
	}

	h.reply(ctx, replyToken, report.ExpenseRecordedText(draft, category.Name, spent, status))
}

func (h *Handler) resolveCategory(ctx context.Context, userID uuid.UUID, token string) (models.Category, error) {
	if strings.TrimSpace(token) == "" {
		return h.categories.GetOrCreateDefault(ctx, userID, h.defaultCategory)
	}
	return h.categories.GetOrCreate(ctx, userID, token)
}

func (h *Handler) monthlyStats(ctx context.Context, user models.User, now time.Time) (stats.MonthlyStats, stats.BudgetStatus, error) {
	start, end := stats.MonthRange(now)

	expenses, err := h.expenses.ListForPeriod(ctx, user.ID, start, end)
	if err != nil {
		return stats.MonthlyStats{}, stats.BudgetStatus{}, err
	}

	st := stats.Aggregate(expenses)
	return st, stats.EvaluateBudget(user.MonthlyBudgetAmount, st.Total), nil
}

func (h *Handler) publish(userID uuid.UUID, eventType string, data any) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(userID, notifications.Event{Type: eventType, Data: data})
}

func (h *Handler) reply(ctx context.Context, replyToken, text string) {
	if replyToken == "" {
		return
	}

	if err := h.replier.ReplyText(ctx, replyToken, text); err != nil {
		h.logger.Error("reply failed", slog.String("error", err.Error()))
	}
}
