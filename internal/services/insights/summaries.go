package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"findash/internal/models"
)

// categoryBudgetFactor sizes each category's budget from its current spend
const categoryBudgetFactor = 1.2

// SummarizeIncome computes the income tab figures
func SummarizeIncome(r *models.FinancialRecord) *models.IncomeSummary {
	summary := &models.IncomeSummary{}

	for i, in := range r.Income {
		summary.Total += in.Amount
		if in.Amount > summary.Highest {
			summary.Highest = in.Amount
		}

		var growth float64
		if i > 0 {
			growth = PercentChange(in.Amount, r.Income[i-1].Amount)
		}
		summary.Months = append(summary.Months, models.MonthlyGrowth{
			Month:     in.Month,
			Amount:    in.Amount,
			Source:    in.Source,
			GrowthPct: growth,
		})
	}
	summary.Average = AverageMonthlyIncome(r)

	return summary
}

// SummarizeExpenses computes the expenses tab figures
func SummarizeExpenses(r *models.FinancialRecord) *models.ExpenseSummary {
	summary := &models.ExpenseSummary{
		Months: append([]models.ExpenseEntry(nil), r.Expenses...),
	}
	if len(r.Expenses) == 0 {
		return summary
	}

	summary.Lowest = r.Expenses[0].Amount
	for _, ex := range r.Expenses {
		summary.Total += ex.Amount
		summary.Highest = math.Max(summary.Highest, ex.Amount)
		summary.Lowest = math.Min(summary.Lowest, ex.Amount)
	}
	summary.Average = AverageMonthlyExpense(r)

	if n := len(r.Expenses); n >= 2 {
		summary.TrendPct = PercentChange(r.Expenses[n-1].Amount, r.Expenses[n-2].Amount)
	}

	return summary
}

// SummarizeSavings computes the savings tab figures
func SummarizeSavings(r *models.FinancialRecord) *models.SavingsSummary {
	summary := &models.SavingsSummary{
		TotalSavings:   r.TotalSavings,
		SavingsGoal:    r.SavingsGoal,
		AverageMonthly: r.TotalSavings / MonthsInPeriod,
	}

	if rate, ok := SavingsRate(r); ok {
		summary.SavingsRate = &rate
	}
	if progress, ok := GoalProgressPercent(r); ok {
		summary.GoalProgress = &progress
	}

	summary.RemainingToGoal = math.Max(r.SavingsGoal-r.TotalSavings, 0)
	switch {
	case summary.RemainingToGoal == 0:
		months := 0
		summary.MonthsToGoal = &months
	case summary.AverageMonthly > 0:
		months := int(math.Ceil(summary.RemainingToGoal / summary.AverageMonthly))
		summary.MonthsToGoal = &months
	}

	// Months are index-aligned; a missing side counts as zero
	n := max(len(r.Income), len(r.Expenses))
	for i := 0; i < n; i++ {
		var m models.MonthlySavings
		if i < len(r.Income) {
			m.Month = r.Income[i].Month
			m.Income = r.Income[i].Amount
		}
		if i < len(r.Expenses) {
			if m.Month == "" {
				m.Month = r.Expenses[i].Month
			}
			m.Expenses = r.Expenses[i].Amount
		}
		m.Savings = m.Income - m.Expenses
		summary.Months = append(summary.Months, m)
	}

	return summary
}

// SummarizeCategories ranks categories by spend and derives budget usage
func SummarizeCategories(r *models.FinancialRecord) *models.CategorySummary {
	summary := &models.CategorySummary{}

	for _, c := range r.CategoryExpenses {
		summary.TotalSpending += c.Amount

		budget := c.Amount * categoryBudgetFactor
		var used float64
		if budget > 0 {
			used = c.Amount / budget * 100
		}
		summary.Ranked = append(summary.Ranked, models.CategoryBudget{
			CategoryExpense: c,
			Budget:          budget,
			BudgetUsed:      used,
			OverBudget:      c.Amount > budget,
		})
	}

	sort.SliceStable(summary.Ranked, func(i, j int) bool {
		return summary.Ranked[i].Amount > summary.Ranked[j].Amount
	})

	if top, ok := TopCategory(r); ok {
		summary.Top = &top
	}

	return summary
}

// SummarizeEMIs computes the EMI tab figures relative to now
func SummarizeEMIs(r *models.FinancialRecord, now time.Time) *models.EMISummary {
	summary := &models.EMISummary{
		TotalEMI: TotalEMI(r),
		Health:   EMIHealth(r),
	}

	for _, e := range r.EMIs {
		switch e.Status {
		case models.EMIOverdue:
			summary.OverdueCount++
		case models.EMIUpcoming:
			summary.UpcomingCount++
		case models.EMIPaid:
			summary.PaidCount++
		}

		days := DaysUntil(e.DueDate, now)
		summary.Items = append(summary.Items, models.EMIDetail{
			EMI:          e,
			DaysUntilDue: days,
			DueLabel:     DueLabel(days),
		})
	}

	if next, ok := NextDueEMI(r); ok {
		summary.NextDue = &next
	}

	return summary
}

// DaysUntil returns the whole days from now to the due date, rounded up
func DaysUntil(due models.Date, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// DueLabel describes a countdown the way the EMI table shows it
func DueLabel(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	case days == 0:
		return "Due today"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
