// Package stats computes monthly spending figures from expense records that
// were already filtered to the current period by the storage layer.
package stats

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maialona/line-budget-bot/internal/models"
)

// CategoryTotal is one per-category group. CategoryID is invalid for
// uncategorized expenses, which form a group of their own.
type CategoryTotal struct {
	CategoryID   uuid.NullUUID
	CategoryName string
	Total        decimal.Decimal
}

type MonthlyStats struct {
	Total      decimal.Decimal
	Count      int
	ByCategory []CategoryTotal
}

type DailyTotal struct {
	Date  string
	Total decimal.Decimal
}

// CategoryShare is a ranked category with its share of the monthly total,
// rounded to one decimal place.
type CategoryShare struct {
	CategoryName string
	Total        decimal.Decimal
	Percent      float64
}

// Aggregate sums the supplied expenses into a monthly view. The caller must
// have restricted the set to [periodStart, periodEnd) and excluded
// soft-deleted rows; no re-filtering happens here. Groups are keyed by
// category id (a null id is a valid group), take their display name from the
// first record seen for that key, and are sorted by total descending with
// ties kept in first-encountered order.
func Aggregate(expenses []models.Expense) MonthlyStats {
	stats := MonthlyStats{
		Total:      decimal.Zero,
		Count:      len(expenses),
		ByCategory: make([]CategoryTotal, 0),
	}

	index := make(map[uuid.NullUUID]int)

	for _, e := range expenses {
		stats.Total = stats.Total.Add(e.Amount)

		i, seen := index[e.CategoryID]
		if !seen {
			index[e.CategoryID] = len(stats.ByCategory)
			stats.ByCategory = append(stats.ByCategory, CategoryTotal{
				CategoryID:   e.CategoryID,
				CategoryName: e.CategoryName,
				Total:        e.Amount,
			})
			continue
		}

		stats.ByCategory[i].Total = stats.ByCategory[i].Total.Add(e.Amount)
	}

	sort.SliceStable(stats.ByCategory, func(a, b int) bool {
		return stats.ByCategory[a].Total.GreaterThan(stats.ByCategory[b].Total)
	})

	return stats
}

// DailySeries groups the same expenses by the UTC calendar date of spent_at
// and returns per-day totals sorted ascending by date string. Days without
// spending are absent; consumers must handle the gaps.
func DailySeries(expenses []models.Expense) []DailyTotal {
	totals := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		key := e.SpentAt.UTC().Format("2006-01-02")
		totals[key] = totals[key].Add(e.Amount)
	}

	series := make([]DailyTotal, 0, len(totals))
	for date, total := range totals {
		series = append(series, DailyTotal{Date: date, Total: total})
	}

	sort.Slice(series, func(a, b int) bool {
		return series[a].Date < series[b].Date
	})

	return series
}

// TopCategories returns up to n of the highest-spending groups with their
// percentage of the monthly total.
func TopCategories(stats MonthlyStats, n int) []CategoryShare {
	groups := stats.ByCategory
	if n >= 0 && len(groups) > n {
		groups = groups[:n]
	}

	shares := make([]CategoryShare, 0, len(groups))
	for _, g := range groups {
		shares = append(shares, CategoryShare{
			CategoryName: g.CategoryName,
			Total:        g.Total,
			Percent:      PercentOf(g.Total, stats.Total),
		})
	}

	return shares
}

// PercentOf computes part/whole as a percentage rounded to one decimal
// place. The denominator is floored at 1 so a zero total never divides by
// zero; this mirrors the rounding rule used across the chat and dashboard
// views: round(part/max(whole,1)*1000)/10.
func PercentOf(part, whole decimal.Decimal) float64 {
	base := whole
	if base.LessThan(decimal.NewFromInt(1)) {
		base = decimal.NewFromInt(1)
	}

	percent := part.Div(base).Mul(decimal.NewFromInt(1000)).Round(0).Div(decimal.NewFromInt(10))
	f, _ := percent.Float64()
	return f
}

// MonthRange returns the half-open interval covering the calendar month of
// now: the first instant of the month and the first instant of the next one,
// in now's location.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	return start, end
}
