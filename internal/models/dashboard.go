package models

// MonthlyGrowth is one month's income with its change from the month before
type MonthlyGrowth struct {
	Month     string  `json:"month"`
	Amount    float64 `json:"amount"`
	Source    string  `json:"source"`
	GrowthPct float64 `json:"growth_pct"`
}

// IncomeSummary backs the income tab
type IncomeSummary struct {
	Total   float64         `json:"total"`
	Average float64         `json:"average"`
	Highest float64         `json:"highest"`
	Months  []MonthlyGrowth `json:"months"`
}

// ExpenseSummary backs the expenses tab
type ExpenseSummary struct {
	Total    float64        `json:"total"`
	Average  float64        `json:"average"`
	Highest  float64        `json:"highest"`
	Lowest   float64        `json:"lowest"`
	TrendPct float64        `json:"trend_pct"` // last month vs the month before
	Months   []ExpenseEntry `json:"months"`
}

// MonthlySavings is income minus expenses for one month
type MonthlySavings struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Savings  float64 `json:"savings"`
}

// SavingsSummary backs the savings tab
type SavingsSummary struct {
	SavingsRate     *float64         `json:"savings_rate"`
	GoalProgress    *float64         `json:"goal_progress"`
	RemainingToGoal float64          `json:"remaining_to_goal"`
	MonthsToGoal    *int             `json:"months_to_goal"` // nil when savings pace is zero
	AverageMonthly  float64          `json:"average_monthly"`
	TotalSavings    float64          `json:"total_savings"`
	SavingsGoal     float64          `json:"savings_goal"`
	Months          []MonthlySavings `json:"months"`
}

// CategoryBudget is a category with its derived budget usage
type CategoryBudget struct {
	CategoryExpense
	Budget     float64 `json:"budget"`
	BudgetUsed float64 `json:"budget_used"`
	OverBudget bool    `json:"over_budget"`
}

// CategorySummary backs the categories tab
type CategorySummary struct {
	TotalSpending float64          `json:"total_spending"`
	Top           *CategoryExpense `json:"top"`
	Ranked        []CategoryBudget `json:"ranked"`
}

// EMIDetail is one installment with its countdown
type EMIDetail struct {
	EMI
	DaysUntilDue int    `json:"days_until_due"`
	DueLabel     string `json:"due_label"`
}

// EMISummary backs the EMI & loans tab
type EMISummary struct {
	TotalEMI      float64     `json:"total_emi"`
	OverdueCount  int         `json:"overdue_count"`
	UpcomingCount int         `json:"upcoming_count"`
	PaidCount     int         `json:"paid_count"`
	NextDue       *EMI        `json:"next_due"`
	Health        EMIHealth   `json:"health"`
	Items         []EMIDetail `json:"items"`
}
