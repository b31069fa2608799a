// Package insights derives financial facts and suggestions from a FinancialRecord.
// Every function is pure and total: empty sequences and zero denominators
// yield sentinels instead of NaN or Inf.
package insights

import (
	"fmt"
	"math"
	"strings"

	"findash/internal/format"
	"findash/internal/models"
)

// MonthsInPeriod is the number of months the scalar aggregates cover
const MonthsInPeriod = 6

// EMI health band edges, percent of monthly income
const (
	emiCautionAt  = 30.0
	emiHighRiskAt = 40.0
)

// LastMonthSavings returns last month's income minus last month's expenses.
// A missing side counts as zero.
func LastMonthSavings(r *models.FinancialRecord) float64 {
	return lastIncome(r) - lastExpense(r)
}

// LastMonthSavingsRate is last month's savings as a percent of last month's income
func LastMonthSavingsRate(r *models.FinancialRecord) (float64, bool) {
	return percentOf(LastMonthSavings(r), lastIncome(r))
}

// TopCategory returns the category with the largest amount.
// Ties go to the category stored first.
func TopCategory(r *models.FinancialRecord) (models.CategoryExpense, bool) {
	if len(r.CategoryExpenses) == 0 {
		return models.CategoryExpense{}, false
	}
	top := r.CategoryExpenses[0]
	for _, c := range r.CategoryExpenses[1:] {
		if c.Amount > top.Amount {
			top = c
		}
	}
	return top, true
}

// GoalProgressPercent returns total savings as a percent of the savings goal.
// The value is not capped; ok is false when no goal is set.
func GoalProgressPercent(r *models.FinancialRecord) (float64, bool) {
	return percentOf(r.TotalSavings, r.SavingsGoal)
}

// SavingsRate returns total savings as a percent of total income
func SavingsRate(r *models.FinancialRecord) (float64, bool) {
	return percentOf(r.TotalSavings, r.TotalIncome)
}

// TotalEMI sums every installment regardless of status
func TotalEMI(r *models.FinancialRecord) float64 {
	var total float64
	for _, e := range r.EMIs {
		total += e.Amount
	}
	return total
}

// EMIHealth compares the monthly EMI load with average monthly income
func EMIHealth(r *models.FinancialRecord) models.EMIHealth {
	ratio, ok := percentOf(TotalEMI(r), r.TotalIncome/MonthsInPeriod)
	if !ok {
		return models.EMIHealth{Band: models.EMINotApplicable}
	}
	return models.EMIHealth{Ratio: ratio, Band: ClassifyEMIRatio(ratio)}
}

// ClassifyEMIRatio maps a ratio to its band
func ClassifyEMIRatio(ratio float64) models.EMIBand {
	switch {
	case ratio < emiCautionAt:
		return models.EMIHealthy
	case ratio <= emiHighRiskAt:
		return models.EMICaution
	default:
		return models.EMIHighRisk
	}
}

// OverdueEMIs returns overdue installments in stored order
func OverdueEMIs(r *models.FinancialRecord) []models.EMI {
	var overdue []models.EMI
	for _, e := range r.EMIs {
		if e.Status == models.EMIOverdue {
			overdue = append(overdue, e)
		}
	}
	return overdue
}

// NextDueEMI returns the unpaid installment with the earliest due date.
// Ties go to the one stored first.
func NextDueEMI(r *models.FinancialRecord) (models.EMI, bool) {
	var next models.EMI
	found := false
	for _, e := range r.EMIs {
		if e.Status == models.EMIPaid {
			continue
		}
		if !found || e.DueDate.Before(next.DueDate.Time) {
			next = e
			found = true
		}
	}
	return next, found
}

// FindCategory looks a category up by name, ignoring case
func FindCategory(r *models.FinancialRecord, name string) (models.CategoryExpense, bool) {
	for _, c := range r.CategoryExpenses {
		if strings.EqualFold(c.Category, name) {
			return c, true
		}
	}
	return models.CategoryExpense{}, false
}

// AverageMonthlyIncome averages the income sequence
func AverageMonthlyIncome(r *models.FinancialRecord) float64 {
	if len(r.Income) == 0 {
		return 0
	}
	var total float64
	for _, in := range r.Income {
		total += in.Amount
	}
	return total / float64(len(r.Income))
}

// AverageMonthlyExpense averages the expense sequence
func AverageMonthlyExpense(r *models.FinancialRecord) float64 {
	if len(r.Expenses) == 0 {
		return 0
	}
	var total float64
	for _, ex := range r.Expenses {
		total += ex.Amount
	}
	return total / float64(len(r.Expenses))
}

// PercentChange is the change from previous to current in percent.
// There is no baseline when previous is zero, so the change reads as 0.
func PercentChange(current, previous float64) float64 {
	change, ok := percentOf(current-previous, math.Abs(previous))
	if !ok {
		return 0
	}
	return change
}

// ratioOf divides part by whole. ok is false when whole is zero or so small
// that the quotient is not a finite number.
func ratioOf(part, whole float64) (float64, bool) {
	if whole == 0 {
		return 0, false
	}
	q := part / whole
	if math.IsInf(q, 0) || math.IsNaN(q) {
		return 0, false
	}
	return q, true
}

func percentOf(part, whole float64) (float64, bool) {
	q, ok := ratioOf(part, whole)
	if !ok || math.IsInf(q*100, 0) {
		return 0, false
	}
	return q * 100, true
}

// Suggestion templates

// Each template has a fixed type, priority and slot. Priorities are a static
// lookup and are not recomputed from the EMI bands or any other threshold.
type template struct {
	kind     models.SuggestionType
	priority models.Priority
	build    func(f facts) (title, description, impact, category string)
}

// facts are the derived values the templates interpolate
type facts struct {
	top          models.CategoryExpense
	hasTop       bool
	transport    models.CategoryExpense
	hasTransport bool
	avgExpense   float64
	totalSavings float64
	lastIncome   float64
	lastSavings  float64
	overdue      []models.EMI
	totalEMI     float64
}

var templates = []template{
	{models.SuggestReduce, models.PriorityHigh, reduceTopCategory},
	{models.SuggestSave, models.PriorityHigh, emergencyFund},
	{models.SuggestInvest, models.PriorityMedium, startSIP},
	{models.SuggestAlert, models.PriorityHigh, emiAlert},
	{models.SuggestReduce, models.PriorityMedium, transportCosts},
	{models.SuggestSave, models.PriorityMedium, automateSavings},
}

// TemplateCount is the number of suggestions DeriveSuggestions always returns
func TemplateCount() int {
	return len(templates)
}

// DeriveSuggestions maps the record's derived facts onto the fixed set of
// suggestion templates. Order and cardinality never vary.
func DeriveSuggestions(r *models.FinancialRecord) []models.Suggestion {
	f := deriveFacts(r)

	suggestions := make([]models.Suggestion, 0, len(templates))
	for _, t := range templates {
		title, desc, impact, category := t.build(f)
		suggestions = append(suggestions, models.Suggestion{
			Type:        t.kind,
			Priority:    t.priority,
			Title:       title,
			Description: desc,
			Impact:      impact,
			Category:    category,
		})
	}
	return suggestions
}

func deriveFacts(r *models.FinancialRecord) facts {
	f := facts{
		avgExpense:   AverageMonthlyExpense(r),
		totalSavings: r.TotalSavings,
		lastIncome:   lastIncome(r),
		lastSavings:  LastMonthSavings(r),
		overdue:      OverdueEMIs(r),
		totalEMI:     TotalEMI(r),
	}
	f.top, f.hasTop = TopCategory(r)
	f.transport, f.hasTransport = FindCategory(r, "Transport")
	return f
}

func reduceTopCategory(f facts) (string, string, string, string) {
	if !f.hasTop {
		return "Review Your Spending",
			"No category breakdown is available yet. Categorise your expenses to see where your money goes.",
			"Find your biggest savings opportunity",
			""
	}
	saving := format.RoundTo(f.top.Amount*0.45, 1000)
	return fmt.Sprintf("Reduce %s Expenses", f.top.Category),
		fmt.Sprintf("You've spent %s on %s this month, which is %s%% of your total expenses. Look for cheaper alternatives where you can.",
			format.INR(f.top.Amount), strings.ToLower(f.top.Category), format.Number(f.top.Percentage)),
		fmt.Sprintf("Save %s/month", format.INR(saving)),
		f.top.Category
}

func emergencyFund(f facts) (string, string, string, string) {
	const targetMonths = 6
	covered, ok := ratioOf(f.totalSavings, f.avgExpense)
	if !ok {
		return "Increase Emergency Fund",
			"Add your monthly expenses to size an emergency fund. Aim for 6 months of expenses to be financially secure.",
			"Build a 6-month safety net",
			"Savings"
	}
	target := format.RoundTo(f.avgExpense*targetMonths, 1000)
	return "Increase Emergency Fund",
		fmt.Sprintf("Your emergency fund covers %s months of expenses. Aim for %d months to be financially secure.",
			format.Fixed(covered, 1), targetMonths),
		fmt.Sprintf("Build %s fund", format.INR(target)),
		"Savings"
}

func startSIP(f facts) (string, string, string, string) {
	if f.lastSavings <= 0 {
		return "Start SIP Investment",
			"Build a monthly surplus first, then consider a SIP in equity mutual funds.",
			"Potential returns: 12-15% annually",
			"Investment"
	}
	sip := format.RoundTo(f.lastSavings*0.4, 1000)
	if sip == 0 {
		sip = 1000
	}
	return "Start SIP Investment",
		fmt.Sprintf("You saved %s last month. Consider starting a SIP of %s/month in equity mutual funds.",
			format.INR(f.lastSavings), format.INR(sip)),
		"Potential returns: 12-15% annually",
		"Investment"
}

func emiAlert(f facts) (string, string, string, string) {
	if len(f.overdue) == 0 {
		return "All EMIs On Track",
			fmt.Sprintf("No overdue installments. Your total monthly EMI is %s.", format.INR(f.totalEMI)),
			"Keep your payment record clean",
			"EMI"
	}
	first := f.overdue[0]
	desc := fmt.Sprintf("Your %s payment of %s is overdue. Pay immediately to avoid penalty charges.",
		strings.ToLower(first.Name), format.INR(first.Amount))
	if len(f.overdue) > 1 {
		desc += fmt.Sprintf(" %d other installments are also overdue.", len(f.overdue)-1)
	}
	return fmt.Sprintf("%s Payment Overdue", first.Name), desc, "Avoid ₹500 late fee", "EMI"
}

func transportCosts(f facts) (string, string, string, string) {
	if !f.hasTransport || f.transport.Amount == 0 {
		return "Optimize Transportation Costs",
			"Consider carpooling or using public transport to keep commuting costs low.",
			"Keep transport spending in check",
			"Transport"
	}
	saving := format.RoundTo(f.transport.Amount/3, 1000)
	return "Optimize Transportation Costs",
		fmt.Sprintf("Consider carpooling or using public transport to reduce your %s monthly transport expenses.",
			format.INR(f.transport.Amount)),
		fmt.Sprintf("Save %s/month", format.INR(saving)),
		"Transport"
}

func automateSavings(f facts) (string, string, string, string) {
	amount := format.RoundTo(f.lastIncome*0.2, 1000)
	return "Automate Savings",
		"Set up automatic transfers to your savings account right after salary credit to avoid overspending.",
		fmt.Sprintf("Guaranteed savings of %s/month", format.INR(amount)),
		"Savings"
}

func lastIncome(r *models.FinancialRecord) float64 {
	if len(r.Income) == 0 {
		return 0
	}
	return r.Income[len(r.Income)-1].Amount
}

func lastExpense(r *models.FinancialRecord) float64 {
	if len(r.Expenses) == 0 {
		return 0
	}
	return r.Expenses[len(r.Expenses)-1].Amount
}
