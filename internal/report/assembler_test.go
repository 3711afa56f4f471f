package report

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/models"
	"github.com/maialona/line-budget-bot/internal/quicktext"
	"github.com/maialona/line-budget-bot/internal/stats"
)

func sampleUser(budget *int64) models.User {
	user := models.User{
		ID:         uuid.New(),
		LineUserID: "U1234567890",
		Currency:   "TWD",
	}
	if budget != nil {
		user.MonthlyBudgetAmount = decimal.NullDecimal{Decimal: decimal.NewFromInt(*budget), Valid: true}
	}
	return user
}

func sampleExpenses(categoryName string, amounts []float64, spentAt time.Time) []models.Expense {
	categoryID := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	expenses := make([]models.Expense, 0, len(amounts))
	for _, amount := range amounts {
		expenses = append(expenses, models.Expense{
			ID:           uuid.New(),
			CategoryID:   categoryID,
			CategoryName: categoryName,
			Amount:       decimal.NewFromFloat(amount),
			SpentAt:      spentAt,
		})
	}
	return expenses
}

// TestMonthlySummaryTextEmptyMonth checks the dedicated no-records text.
func TestMonthlySummaryTextEmptyMonth(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	text := MonthlySummaryText(stats.MonthlyStats{Total: decimal.Zero}, stats.BudgetStatus{}, now)

	if !strings.Contains(text, "2025/03") {
		t.Fatalf("expected month header, got:\n%s", text)
	}
	if !strings.Contains(text, "這個月你還沒有任何記帳紀錄") {
		t.Fatalf("expected empty-month text, got:\n%s", text)
	}
}

// TestMonthlySummaryTextWithBudget checks totals, remaining and the top
// category lines.
func TestMonthlySummaryTextWithBudget(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	expenses := sampleExpenses("午餐", []float64{120, 80}, now)
	st := stats.Aggregate(expenses)
	budget := decimal.NullDecimal{Decimal: decimal.NewFromInt(1000), Valid: true}
	status := stats.EvaluateBudget(budget, st.Total)

	text := MonthlySummaryText(st, status, now)

	for _, want := range []string{"總支出：200", "本月預算：1,000", "剩餘可花：800", "✅", "午餐", "100%", "本月累計 2 筆支出"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected summary to contain %q, got:\n%s", want, text)
		}
	}
}

// TestMonthlySummaryTextOverBudget checks the overage wording.
func TestMonthlySummaryTextOverBudget(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	expenses := sampleExpenses("旅遊", []float64{1200}, now)
	st := stats.Aggregate(expenses)
	budget := decimal.NullDecimal{Decimal: decimal.NewFromInt(1000), Valid: true}
	status := stats.EvaluateBudget(budget, st.Total)

	text := MonthlySummaryText(st, status, now)

	if !strings.Contains(text, "已超出預算：200") {
		t.Fatalf("expected overage line, got:\n%s", text)
	}
	if !strings.Contains(text, "⚠️") {
		t.Fatalf("expected warning marker, got:\n%s", text)
	}
}

// TestExpenseRecordedTextWithoutBudget checks the plain confirmation.
func TestExpenseRecordedTextWithoutBudget(t *testing.T) {
	draft := quicktext.Draft{Amount: decimal.NewFromInt(120), CategoryToken: "午餐"}

	text := ExpenseRecordedText(draft, "午餐", decimal.NewFromInt(120), stats.BudgetStatus{})

	for _, want := range []string{"類別：午餐", "金額：120", "備註：無備註"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected confirmation to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "本月預算") {
		t.Fatalf("expected no budget tail, got:\n%s", text)
	}
}

// TestExpenseRecordedTextOverBudget checks the budget tail after an entry
// that pushes the month over.
func TestExpenseRecordedTextOverBudget(t *testing.T) {
	draft := quicktext.Draft{Amount: decimal.NewFromInt(300), CategoryToken: "晚餐", Note: "聚餐"}
	budget := decimal.NullDecimal{Decimal: decimal.NewFromInt(1000), Valid: true}
	status := stats.EvaluateBudget(budget, decimal.NewFromInt(1100))

	text := ExpenseRecordedText(draft, "晚餐", decimal.NewFromInt(1100), status)

	for _, want := range []string{"備註：聚餐", "本月預算：1,000", "本月已花：1,100", "已超出預算：100"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected confirmation to contain %q, got:\n%s", want, text)
		}
	}
}

// TestFormatAmount checks display rounding and grouping.
func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":       "0",
		"120":     "120",
		"1234.4":  "1,234",
		"1234567": "1,234,567",
		"-200":    "-200",
		"999.5":   "1,000",
	}

	for input, want := range cases {
		d, err := decimal.NewFromString(input)
		if err != nil {
			t.Fatalf("bad input %q: %v", input, err)
		}
		if got := FormatAmount(d); got != want {
			t.Fatalf("FormatAmount(%s): expected %q, got %q", input, want, got)
		}
	}
}

// TestBuildDashboard checks the payload shape and figures end to end.
func TestBuildDashboard(t *testing.T) {
	budget := int64(1000)
	user := sampleUser(&budget)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	note := "麥當勞"
	food := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	transport := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	expenses := []models.Expense{
		{
			ID:           uuid.New(),
			CategoryID:   food,
			CategoryName: "午餐",
			Amount:       decimal.NewFromInt(120),
			SpentAt:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			Note:         &note,
		},
		{
			ID:           uuid.New(),
			CategoryID:   transport,
			CategoryName: "交通",
			Amount:       decimal.NewFromInt(30),
			SpentAt:      time.Date(2025, 3, 9, 8, 0, 0, 0, time.UTC),
		},
		{
			ID:           uuid.New(),
			CategoryID:   food,
			CategoryName: "午餐",
			Amount:       decimal.NewFromInt(90),
			SpentAt:      time.Date(2025, 3, 9, 12, 30, 0, 0, time.UTC),
		},
	}

	st := stats.Aggregate(expenses)
	status := stats.EvaluateBudget(user.MonthlyBudgetAmount, st.Total)

	payload := BuildDashboard(user, st, status, expenses, start, end)

	if !payload.Summary.TotalExpense.Equal(decimal.NewFromInt(240)) {
		t.Fatalf("expected total 240, got %s", payload.Summary.TotalExpense)
	}
	if payload.Summary.ExpenseCount != 3 {
		t.Fatalf("expected count 3, got %d", payload.Summary.ExpenseCount)
	}
	if payload.Summary.Remaining == nil || !payload.Summary.Remaining.Equal(decimal.NewFromInt(760)) {
		t.Fatalf("expected remaining 760, got %v", payload.Summary.Remaining)
	}
	if payload.Summary.IsOverBudget {
		t.Fatal("expected not over budget")
	}

	if len(payload.ByCategory) != 2 {
		t.Fatalf("expected 2 category items, got %d", len(payload.ByCategory))
	}
	if payload.ByCategory[0].CategoryName != "午餐" || payload.ByCategory[0].Percent != 87.5 {
		t.Fatalf("unexpected top category: %+v", payload.ByCategory[0])
	}

	if len(payload.DailySeries) != 2 {
		t.Fatalf("expected 2 daily points, got %d", len(payload.DailySeries))
	}
	if payload.DailySeries[0].Date != "2025-03-09" || !payload.DailySeries[0].Total.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected first daily point: %+v", payload.DailySeries[0])
	}

	if len(payload.RecentExpenses) != 3 {
		t.Fatalf("expected 3 recent expenses, got %d", len(payload.RecentExpenses))
	}
	if payload.RecentExpenses[0].CategoryName != "午餐" || payload.RecentExpenses[0].Note == nil {
		t.Fatalf("unexpected first recent expense: %+v", payload.RecentExpenses[0])
	}

	if payload.Period.Type != "month" || payload.Period.Start != "2025-03-01T00:00:00Z" {
		t.Fatalf("unexpected period: %+v", payload.Period)
	}
	if payload.User.MonthlyBudgetAmount == nil || !payload.User.MonthlyBudgetAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected user budget: %v", payload.User.MonthlyBudgetAmount)
	}
}

// TestBuildDashboardCapsRecentExpenses checks the recent list limit.
func TestBuildDashboardCapsRecentExpenses(t *testing.T) {
	user := sampleUser(nil)
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	expenses := make([]models.Expense, 0, 25)
	for i := 0; i < 25; i++ {
		expenses = append(expenses, sampleExpenses("午餐", []float64{10}, start.AddDate(0, 0, i%28))...)
	}

	payload := BuildDashboard(user, stats.Aggregate(expenses), stats.BudgetStatus{}, expenses, start, end)

	if len(payload.RecentExpenses) != 20 {
		t.Fatalf("expected 20 recent expenses, got %d", len(payload.RecentExpenses))
	}
	if payload.Summary.ExpenseCount != 25 {
		t.Fatalf("expected count 25, got %d", payload.Summary.ExpenseCount)
	}
	if payload.Summary.Budget != nil {
		t.Fatal("expected nil budget in summary")
	}
}
