package models

import "time"

// MockRecord returns the six-month demo data set served before any upload.
// Each call returns a fresh value.
func MockRecord() *FinancialRecord {
	return &FinancialRecord{
		Income: []IncomeEntry{
			{Month: "Jan", Amount: 75000, Source: "Salary"},
			{Month: "Feb", Amount: 75000, Source: "Salary"},
			{Month: "Mar", Amount: 82000, Source: "Salary + Bonus"},
			{Month: "Apr", Amount: 75000, Source: "Salary"},
			{Month: "May", Amount: 75000, Source: "Salary"},
			{Month: "Jun", Amount: 75000, Source: "Salary"},
		},
		Expenses: []ExpenseEntry{
			{Month: "Jan", Amount: 45000, Category: "Mixed"},
			{Month: "Feb", Amount: 52000, Category: "Mixed"},
			{Month: "Mar", Amount: 48000, Category: "Mixed"},
			{Month: "Apr", Amount: 55000, Category: "Mixed"},
			{Month: "May", Amount: 43000, Category: "Mixed"},
			{Month: "Jun", Amount: 49000, Category: "Mixed"},
		},
		CategoryExpenses: []CategoryExpense{
			{Category: "Food", Amount: 18000, Percentage: 25, Color: "#3B82F6"},
			{Category: "Transport", Amount: 12000, Percentage: 17, Color: "#10B981"},
			{Category: "Entertainment", Amount: 8000, Percentage: 11, Color: "#F59E0B"},
			{Category: "Bills", Amount: 15000, Percentage: 21, Color: "#EF4444"},
			{Category: "Grocery", Amount: 10000, Percentage: 14, Color: "#8B5CF6"},
			{Category: "Others", Amount: 8000, Percentage: 12, Color: "#6B7280"},
		},
		EMIs: []EMI{
			{Name: "Home Loan", Amount: 25000, DueDate: NewDate(2024, time.August, 5), Status: EMIUpcoming},
			{Name: "Car Loan", Amount: 15000, DueDate: NewDate(2024, time.August, 12), Status: EMIUpcoming},
			{Name: "Credit Card", Amount: 8000, DueDate: NewDate(2024, time.July, 28), Status: EMIOverdue},
		},
		TotalIncome:   457000,
		TotalExpenses: 292000,
		TotalSavings:  165000,
		SavingsGoal:   200000,
	}
}
