package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the stored (ISO) form of calendar dates
const DateLayout = "2006-01-02"

// DisplayDateLayout is the day/month/year form shown to users
const DisplayDateLayout = "02/01/2006"

// Date is a calendar date that marshals as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the ISO form
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Display returns the dd/mm/yyyy form
func (d Date) Display() string {
	return d.Format(DisplayDateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EMIStatus is the payment state of an installment
type EMIStatus string

const (
	EMIUpcoming EMIStatus = "upcoming"
	EMIOverdue  EMIStatus = "overdue"
	EMIPaid     EMIStatus = "paid"
)

// IncomeEntry is one month of income
type IncomeEntry struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
	Source string  `json:"source"`
}

// ExpenseEntry is one month of spending, index-aligned with IncomeEntry
type ExpenseEntry struct {
	Month    string  `json:"month"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// CategoryExpense is the spending attributed to one category
type CategoryExpense struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
}

// EMI is an equated monthly installment on a loan
type EMI struct {
	Name    string    `json:"name"`
	Amount  float64   `json:"amount"`
	DueDate Date      `json:"dueDate"`
	Status  EMIStatus `json:"status"`
}

// FinancialRecord is the full data set a session works from.
// It is replaced wholesale, never edited in place.
type FinancialRecord struct {
	Income           []IncomeEntry     `json:"income"`
	Expenses         []ExpenseEntry    `json:"expenses"`
	CategoryExpenses []CategoryExpense `json:"categoryExpenses"`
	EMIs             []EMI             `json:"emis"`

	// Aggregates are supplied independently of the sequences
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	TotalSavings  float64 `json:"totalSavings"`
	SavingsGoal   float64 `json:"savingsGoal"`
}

// Clone returns a deep copy so callers never share backing arrays
func (r *FinancialRecord) Clone() *FinancialRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Income = append([]IncomeEntry(nil), r.Income...)
	c.Expenses = append([]ExpenseEntry(nil), r.Expenses...)
	c.CategoryExpenses = append([]CategoryExpense(nil), r.CategoryExpenses...)
	c.EMIs = append([]EMI(nil), r.EMIs...)
	return &c
}

// MaxAmount bounds every amount in a record. Anything larger is a data
// error, and keeping sums well inside float64 range keeps every derived
// figure finite.
const MaxAmount = 1e15

// Validate reports the first field that violates the amount constraints
func (r *FinancialRecord) Validate() error {
	for i, in := range r.Income {
		if err := checkAmount(in.Amount); err != nil {
			return fmt.Errorf("income[%d] (%s): %w", i, in.Month, err)
		}
	}
	for i, ex := range r.Expenses {
		if err := checkAmount(ex.Amount); err != nil {
			return fmt.Errorf("expenses[%d] (%s): %w", i, ex.Month, err)
		}
	}
	seen := make(map[string]bool)
	for _, c := range r.CategoryExpenses {
		if seen[c.Category] {
			return fmt.Errorf("duplicate category %q", c.Category)
		}
		seen[c.Category] = true
		if err := checkAmount(c.Amount); err != nil {
			return fmt.Errorf("category %q: %w", c.Category, err)
		}
		if c.Percentage < 0 || c.Percentage > 100 {
			return fmt.Errorf("category %q: percentage %.1f out of range", c.Category, c.Percentage)
		}
	}
	for _, e := range r.EMIs {
		if err := checkAmount(e.Amount); err != nil {
			return fmt.Errorf("emi %q: %w", e.Name, err)
		}
		switch e.Status {
		case EMIUpcoming, EMIOverdue, EMIPaid:
		default:
			return fmt.Errorf("emi %q: unknown status %q", e.Name, e.Status)
		}
	}
	aggregates := []struct {
		name  string
		value float64
	}{
		{"totalIncome", r.TotalIncome},
		{"totalExpenses", r.TotalExpenses},
		{"totalSavings", r.TotalSavings},
		{"savingsGoal", r.SavingsGoal},
	}
	for _, a := range aggregates {
		if err := checkAmount(a.value); err != nil {
			return fmt.Errorf("%s: %w", a.name, err)
		}
	}
	return nil
}

func checkAmount(v float64) error {
	switch {
	case v < 0:
		return errors.New("negative amount")
	case !(v <= MaxAmount): // NaN fails every comparison
		return fmt.Errorf("amount out of range (max %.0f)", MaxAmount)
	}
	return nil
}
