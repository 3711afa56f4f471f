package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/auth"
	"github.com/maialona/line-budget-bot/internal/models"
	"github.com/maialona/line-budget-bot/internal/notifications"
	"github.com/maialona/line-budget-bot/internal/report"
	"github.com/maialona/line-budget-bot/internal/repository"
	"github.com/maialona/line-budget-bot/internal/stats"
)

type DashboardHandler struct {
	Users    *repository.UserRepository
	Expenses *repository.ExpenseRepository
	Hub      *notifications.Hub
	Logger   *slog.Logger
}

// NewDashboardHandler creates the dashboard API handler.
func NewDashboardHandler(users *repository.UserRepository, expenses *repository.ExpenseRepository, hub *notifications.Hub, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &DashboardHandler{
		Users:    users,
		Expenses: expenses,
		Hub:      hub,
		Logger:   logger,
	}
}

type MeResponse struct {
	ID                  uuid.UUID        `json:"id"`
	LineUserID          string           `json:"lineUserId"`
	DisplayName         *string          `json:"displayName"`
	Currency            string           `json:"currency"`
	MonthlyBudgetAmount *decimal.Decimal `json:"monthlyBudgetAmount"`
}

// A null amount clears the budget; a numeric amount must be positive.
type BudgetUpdateRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type BudgetResponse struct {
	Budget       *decimal.Decimal `json:"budget"`
	Remaining    *decimal.Decimal `json:"remaining"`
	IsOverBudget bool             `json:"isOverBudget"`
}

// Get returns the current-month dashboard payload.
func (h *DashboardHandler) Get(c echo.Context) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	start, end := stats.MonthRange(time.Now())

	expenses, err := h.Expenses.ListForPeriod(c.Request().Context(), user.ID, start, end)
	if err != nil {
		h.Logger.Error("list expenses failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return serverError(c)
	}

	st := stats.Aggregate(expenses)
	status := stats.EvaluateBudget(user.MonthlyBudgetAmount, st.Total)

	return c.JSON(http.StatusOK, report.BuildDashboard(user, st, status, expenses, start, end))
}

// Me returns the authenticated user's profile.
func (h *DashboardHandler) Me(c echo.Context) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var budget *decimal.Decimal
	if user.MonthlyBudgetAmount.Valid {
		b := user.MonthlyBudgetAmount.Decimal
		budget = &b
	}

	return c.JSON(http.StatusOK, MeResponse{
		ID:                  user.ID,
		LineUserID:          user.LineUserID,
		DisplayName:         user.DisplayName,
		Currency:            user.Currency,
		MonthlyBudgetAmount: budget,
	})
}

// UpdateBudget sets or clears the monthly budget and returns the resulting
// standing for the current month.
func (h *DashboardHandler) UpdateBudget(c echo.Context) error {
	user, ok := h.currentUser(c)
	if !ok {
		return unauthorized(c)
	}

	var req BudgetUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}

	var updated models.User
	var err error

	if req.Amount == nil {
		updated, err = h.Users.ClearMonthlyBudget(c.Request().Context(), user.ID)
		if err == nil {
			h.publish(user.ID, notifications.EventBudgetCleared, nil)
		}
	} else {
		updated, err = h.Users.SetMonthlyBudget(c.Request().Context(), user.ID, *req.Amount)
		if err == nil {
			h.publish(user.ID, notifications.EventBudgetUpdated, *req.Amount)
		}
	}
	if err != nil {
		if errors.Is(err, repository.ErrInvalidBudget) {
			return badRequest(c, "budget amount must be greater than zero")
		}
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("update budget failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return serverError(c)
	}

	start, end := stats.MonthRange(time.Now())
	expenses, err := h.Expenses.ListForPeriod(c.Request().Context(), updated.ID, start, end)
	if err != nil {
		h.Logger.Error("list expenses failed",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return serverError(c)
	}

	status := stats.EvaluateBudget(updated.MonthlyBudgetAmount, stats.Aggregate(expenses).Total)

	return c.JSON(http.StatusOK, BudgetResponse{
		Budget:       status.Budget,
		Remaining:    status.Remaining,
		IsOverBudget: status.IsOverBudget,
	})
}

// Amount, when present, replaces the stored amount; a note set to the empty
// string clears it, an absent note is left alone.
type ExpenseUpdateRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Note   *string          `json:"note" validate:"omitempty,max=500"`
}

// UpdateExpense edits the amount or note of one expense.
func (h *DashboardHandler) UpdateExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	var req ExpenseUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	if req.Amount == nil && req.Note == nil {
		return badRequest(c, "nothing to update")
	}
	if req.Amount != nil && req.Amount.LessThanOrEqual(decimal.Zero) {
		return badRequest(c, "amount must be greater than zero")
	}

	noteSet := req.Note != nil
	note := req.Note
	if noteSet && *req.Note == "" {
		note = nil
	}

	expense, err := h.Expenses.Update(c.Request().Context(), userID, expenseID, req.Amount, noteSet, note)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		h.Logger.Error("update expense failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return serverError(c)
	}

	h.publish(userID, notifications.EventExpenseUpdated, expense)

	return c.JSON(http.StatusOK, report.RecentExpense{
		ID:           expense.ID,
		SpentAt:      expense.SpentAt.Format(time.RFC3339),
		CategoryName: expense.CategoryName,
		Amount:       expense.Amount,
		Note:         expense.Note,
	})
}

// DeleteExpense soft-deletes one of the user's expenses.
func (h *DashboardHandler) DeleteExpense(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid expense id")
	}

	if err := h.Expenses.SoftDelete(c.Request().Context(), userID, expenseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "expense not found")
		}
		h.Logger.Error("delete expense failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return serverError(c)
	}

	h.publish(userID, notifications.EventExpenseDeleted, map[string]string{"id": expenseID.String()})

	return c.NoContent(http.StatusNoContent)
}

// Stream opens an SSE stream of the user's dashboard events.
func (h *DashboardHandler) Stream(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return serverError(c)
	}

	ch, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	_ = writeSSE(c, notifications.Event{Type: "connected", Data: map[string]string{"user_id": userID.String()}})
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, event); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

func (h *DashboardHandler) currentUser(c echo.Context) (models.User, bool) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return models.User{}, false
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return models.User{}, false
	}

	return user, true
}

func (h *DashboardHandler) publish(userID uuid.UUID, eventType string, data any) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(userID, notifications.Event{Type: eventType, Data: data})
}

func writeSSE(c echo.Context, event notifications.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := c.Response().Write([]byte("event: " + event.Type + "\n")); err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}

	return nil
}
