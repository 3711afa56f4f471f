// Package report renders monthly stats and budget status into the two
// outward-facing shapes: the plain-text chat summary and the dashboard
// payload. It adds no figures of its own.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/models"
	"github.com/maialona/line-budget-bot/internal/quicktext"
	"github.com/maialona/line-budget-bot/internal/stats"
)

const recentExpenseLimit = 20

const summaryTopCategories = 3

// MonthlySummaryText renders the multi-line chat summary for the month of
// now: total, budget standing and the top spending categories.
func MonthlySummaryText(st stats.MonthlyStats, status stats.BudgetStatus, now time.Time) string {
	header := fmt.Sprintf("📊 本月統計（%d/%02d）", now.Year(), int(now.Month()))

	if st.Count == 0 {
		return strings.Join([]string{
			header,
			"——————————",
			"這個月你還沒有任何記帳紀錄。",
			"",
			"你可以直接輸入：",
			"午餐 120",
			"或打「記帳」讓我一步步帶你記～",
		}, "\n")
	}

	lines := []string{
		header,
		"——————————",
		"總支出：" + FormatAmount(st.Total),
	}

	if status.Budget == nil {
		lines = append(lines, "本月預算：尚未設定")
	} else {
		lines = append(lines, "本月預算："+FormatAmount(*status.Budget))
		if status.IsOverBudget {
			lines = append(lines,
				"已超出預算："+FormatAmount(status.Remaining.Abs()),
				"狀態：⚠️ 已超支，記得稍微收斂一下～")
		} else {
			lines = append(lines,
				"剩餘可花："+FormatAmount(*status.Remaining),
				"狀態：✅ 尚未超支")
		}
	}

	top := stats.TopCategories(st, summaryTopCategories)
	if len(top) > 0 {
		lines = append(lines, "", "分類前幾名：")
		for i, item := range top {
			lines = append(lines, fmt.Sprintf("%d. %s：%s（%v%%）",
				i+1, item.CategoryName, FormatAmount(item.Total), item.Percent))
		}
	}

	lines = append(lines,
		"",
		fmt.Sprintf("本月累計 %d 筆支出。", st.Count),
		"你可以輸入「記帳」或直接打「午餐 120」繼續記帳～")

	return strings.Join(lines, "\n")
}

// ExpenseRecordedText confirms one quick-text entry. When a budget is set
// the month's standing is appended so the user sees the effect immediately.
func ExpenseRecordedText(draft quicktext.Draft, categoryName string, spent decimal.Decimal, status stats.BudgetStatus) string {
	note := draft.Note
	if note == "" {
		note = "無備註"
	}

	text := strings.Join([]string{
		"已幫你記上一筆支出：",
		"- 類別：" + categoryName,
		"- 金額：" + FormatAmount(draft.Amount),
		"- 備註：" + note,
	}, "\n")

	if status.Budget == nil {
		return text
	}

	lines := []string{
		text,
		"",
		"本月預算：" + FormatAmount(*status.Budget),
		"本月已花：" + FormatAmount(spent),
	}
	if status.IsOverBudget {
		lines = append(lines, "⚠ 已超出預算："+FormatAmount(status.Remaining.Abs()))
	} else {
		lines = append(lines, "剩餘可花："+FormatAmount(*status.Remaining))
	}

	return strings.Join(lines, "\n")
}

// BudgetSetText confirms a budget update and appends the current summary.
func BudgetSetText(amount decimal.Decimal, summary string) string {
	return fmt.Sprintf("本月預算已設定為：%s\n\n%s", FormatAmount(amount), summary)
}

// FormatAmount renders a monetary value for chat display: rounded to whole
// units with thousands separators. Stored values stay unrounded; this is
// display formatting only.
func FormatAmount(d decimal.Decimal) string {
	whole := d.Round(0)

	s := whole.Abs().String()
	var b strings.Builder
	if whole.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

type Dashboard struct {
	User           DashboardUser    `json:"user"`
	Period         DashboardPeriod  `json:"period"`
	Summary        DashboardSummary `json:"summary"`
	ByCategory     []CategoryItem   `json:"byCategory"`
	DailySeries    []DailyPoint     `json:"dailySeries"`
	RecentExpenses []RecentExpense  `json:"recentExpenses"`
}

type DashboardUser struct {
	ID                  uuid.UUID        `json:"id"`
	LineUserID          string           `json:"lineUserId"`
	DisplayName         *string          `json:"displayName"`
	Currency            string           `json:"currency"`
	MonthlyBudgetAmount *decimal.Decimal `json:"monthlyBudgetAmount"`
}

type DashboardPeriod struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type DashboardSummary struct {
	TotalExpense decimal.Decimal  `json:"totalExpense"`
	Budget       *decimal.Decimal `json:"budget"`
	Remaining    *decimal.Decimal `json:"remaining"`
	IsOverBudget bool             `json:"isOverBudget"`
	ExpenseCount int              `json:"expenseCount"`
}

type CategoryItem struct {
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Percent      float64         `json:"percent"`
}

type DailyPoint struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type RecentExpense struct {
	ID           uuid.UUID       `json:"id"`
	SpentAt      string          `json:"spentAt"`
	CategoryName string          `json:"categoryName"`
	Amount       decimal.Decimal `json:"amount"`
	Note         *string         `json:"note"`
}

// BuildDashboard assembles the dashboard payload for one user and period.
// The expenses slice must be the period's records ordered by spent_at
// descending; the newest entries feed the recent-expenses table.
func BuildDashboard(user models.User, st stats.MonthlyStats, status stats.BudgetStatus, expenses []models.Expense, periodStart, periodEnd time.Time) Dashboard {
	byCategory := make([]CategoryItem, 0, len(st.ByCategory))
	for _, g := range st.ByCategory {
		byCategory = append(byCategory, CategoryItem{
			CategoryName: g.CategoryName,
			Total:        g.Total,
			Percent:      stats.PercentOf(g.Total, st.Total),
		})
	}

	daily := stats.DailySeries(expenses)
	series := make([]DailyPoint, 0, len(daily))
	for _, d := range daily {
		series = append(series, DailyPoint{Date: d.Date, Total: d.Total})
	}

	recent := expenses
	if len(recent) > recentExpenseLimit {
		recent = recent[:recentExpenseLimit]
	}
	recentItems := make([]RecentExpense, 0, len(recent))
	for _, e := range recent {
		recentItems = append(recentItems, RecentExpense{
			ID:           e.ID,
			SpentAt:      e.SpentAt.Format(time.RFC3339),
			CategoryName: e.CategoryName,
			Amount:       e.Amount,
			Note:         e.Note,
		})
	}

	var budgetAmount *decimal.Decimal
	if user.MonthlyBudgetAmount.Valid {
		b := user.MonthlyBudgetAmount.Decimal
		budgetAmount = &b
	}

	return Dashboard{
		User: DashboardUser{
			ID:                  user.ID,
			LineUserID:          user.LineUserID,
			DisplayName:         user.DisplayName,
			Currency:            user.Currency,
			MonthlyBudgetAmount: budgetAmount,
		},
		Period: DashboardPeriod{
			Type:  "month",
			Start: periodStart.Format(time.RFC3339),
			End:   periodEnd.Format(time.RFC3339),
		},
		Summary: DashboardSummary{
			TotalExpense: st.Total,
			Budget:       status.Budget,
			Remaining:    status.Remaining,
			IsOverBudget: status.IsOverBudget,
			ExpenseCount: st.Count,
		},
		ByCategory:     byCategory,
		DailySeries:    series,
		RecentExpenses: recentItems,
	}
}
