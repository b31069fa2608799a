package insights

import (
	"testing"
	"time"

	"findash/internal/models"
)

func TestSummarizeIncome(t *testing.T) {
	s := SummarizeIncome(models.MockRecord())

	if s.Total != 457000 {
		t.Errorf("Expected total 457000, got %v", s.Total)
	}
	if s.Highest != 82000 {
		t.Errorf("Expected highest 82000, got %v", s.Highest)
	}
	if len(s.Months) != 6 {
		t.Fatalf("Expected 6 months, got %d", len(s.Months))
	}
	if s.Months[0].GrowthPct != 0 {
		t.Errorf("First month growth should be 0, got %v", s.Months[0].GrowthPct)
	}
	if s.Months[3].GrowthPct >= 0 {
		t.Errorf("April should show a drop after the March bonus, got %v", s.Months[3].GrowthPct)
	}
}

func TestSummarizeIncomeGrowthAfterZeroMonth(t *testing.T) {
	r := &models.FinancialRecord{Income: []models.IncomeEntry{
		{Month: "Jan", Amount: 0},
		{Month: "Feb", Amount: 50000},
		{Month: "Mar", Amount: 55000},
	}}
	s := SummarizeIncome(r)

	if got := s.Months[1].GrowthPct; got != 0 {
		t.Errorf("Feb after a zero Jan should show 0 growth, got %v", got)
	}
	if got := s.Months[2].GrowthPct; got != 10 {
		t.Errorf("Mar growth = %v, want 10", got)
	}
}

func TestSummarizeExpensesTrendAfterZeroMonth(t *testing.T) {
	r := &models.FinancialRecord{Expenses: []models.ExpenseEntry{
		{Month: "May", Amount: 0},
		{Month: "Jun", Amount: 49000},
	}}
	if got := SummarizeExpenses(r).TrendPct; got != 0 {
		t.Errorf("trend after a zero month = %v, want 0", got)
	}
}

func TestSummarizeExpenses(t *testing.T) {
	s := SummarizeExpenses(models.MockRecord())

	if s.Total != 292000 || s.Highest != 55000 || s.Lowest != 43000 {
		t.Errorf("Unexpected totals: %+v", s)
	}
	// Jun 49000 vs May 43000
	if s.TrendPct < 13.9 || s.TrendPct > 14 {
		t.Errorf("Expected trend ~13.95%%, got %v", s.TrendPct)
	}

	empty := SummarizeExpenses(&models.FinancialRecord{})
	if empty.Total != 0 || empty.TrendPct != 0 {
		t.Errorf("Expected zero summary for empty record, got %+v", empty)
	}
}

func TestSummarizeSavings(t *testing.T) {
	s := SummarizeSavings(models.MockRecord())

	if s.GoalProgress == nil || *s.GoalProgress != 82.5 {
		t.Errorf("Expected goal progress 82.5, got %v", s.GoalProgress)
	}
	if s.RemainingToGoal != 35000 {
		t.Errorf("Expected remaining 35000, got %v", s.RemainingToGoal)
	}
	if s.MonthsToGoal == nil || *s.MonthsToGoal != 2 {
		t.Errorf("Expected 2 months to goal, got %v", s.MonthsToGoal)
	}
	if len(s.Months) != 6 || s.Months[5].Savings != 26000 {
		t.Errorf("Expected June savings of 26000, got %+v", s.Months)
	}

	zero := SummarizeSavings(&models.FinancialRecord{SavingsGoal: 1000})
	if zero.MonthsToGoal != nil {
		t.Errorf("Expected undefined months to goal with no savings pace, got %d", *zero.MonthsToGoal)
	}
	if zero.SavingsRate != nil {
		t.Error("Expected undefined savings rate with no income")
	}
}

func TestSummarizeCategories(t *testing.T) {
	s := SummarizeCategories(models.MockRecord())

	if s.TotalSpending != 71000 {
		t.Errorf("Expected total spending 71000, got %v", s.TotalSpending)
	}
	if s.Top == nil || s.Top.Category != "Food" {
		t.Errorf("Expected Food as top category, got %v", s.Top)
	}
	// Entertainment and Others tie at 8000 and keep stored order
	names := make([]string, len(s.Ranked))
	for i, c := range s.Ranked {
		names[i] = c.Category
	}
	expected := []string{"Food", "Bills", "Transport", "Grocery", "Entertainment", "Others"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Ranked order = %v, want %v", names, expected)
		}
	}
	if s.Ranked[0].OverBudget {
		t.Error("Budget is 1.2x spend; no category should be over budget")
	}
}

func TestSummarizeEMIs(t *testing.T) {
	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	s := SummarizeEMIs(models.MockRecord(), now)

	if s.TotalEMI != 48000 {
		t.Errorf("Expected total EMI 48000, got %v", s.TotalEMI)
	}
	if s.OverdueCount != 1 || s.UpcomingCount != 2 || s.PaidCount != 0 {
		t.Errorf("Unexpected counts: overdue=%d upcoming=%d paid=%d", s.OverdueCount, s.UpcomingCount, s.PaidCount)
	}
	if s.Health.Band != models.EMIHighRisk {
		t.Errorf("Expected high-risk band, got %s", s.Health.Band)
	}

	labels := []string{"4 days", "11 days", "4 days overdue"}
	for i, want := range labels {
		if s.Items[i].DueLabel != want {
			t.Errorf("EMI %d label = %q, want %q", i, s.Items[i].DueLabel, want)
		}
	}
}

func TestDueLabel(t *testing.T) {
	tests := map[int]string{
		-3: "3 days overdue",
		0:  "Due today",
		7:  "7 days",
	}
	for days, want := range tests {
		if got := DueLabel(days); got != want {
			t.Errorf("DueLabel(%d) = %q, want %q", days, got, want)
		}
	}
}
