// Package chat implements the scripted finance assistant: an ordered list of
// keyword rules, each producing a canned reply filled in from the record.
package chat

import (
	"fmt"
	"math/rand"
	"strings"

	"findash/internal/format"
	"findash/internal/models"
	"findash/internal/services/insights"
)

// Picker returns an index in [0, n)
type Picker func(n int) int

// Intent names, in rule order
const (
	IntentLastMonthSavings = "last_month_savings"
	IntentReduceSpending   = "reduce_spending"
	IntentTopCategory      = "top_category"
	IntentSavingsGoal      = "savings_goal"
	IntentEMISummary       = "emi_summary"
	IntentBudgetPlan       = "budget_plan"
	IntentFallback         = "fallback"
)

// Fallbacks are the replies used when no rule matches
var Fallbacks = []string{
	"That's an interesting question! Based on your financial data, I can provide personalized insights. Could you be more specific about what you'd like to know?",
	"I'm here to help you make better financial decisions! You can ask me about your spending patterns, savings goals, or EMI management.",
	"Let me analyze your data... I can help you with budgeting, expense tracking, savings optimization, and much more!",
}

// Greeting opens every conversation
const Greeting = "Hello! I'm your AI Finance Assistant. I can help you analyze your expenses, suggest savings, and answer questions about your financial data. What would you like to know?"

// SamplePrompts are the quick questions offered to the user
var SamplePrompts = []string{
	"How much did I save last month?",
	"Tips to reduce entertainment expenses",
	"What's my biggest spending category?",
	"Am I on track with my savings goal?",
	"Show me my EMI summary",
	"Help me create a budget plan",
}

// rule pairs a keyword predicate with its responder
type rule struct {
	intent  string
	match   func(text string) bool
	respond func(r *models.FinancialRecord) string
}

// Matcher classifies free text against rules in registration order.
// The first matching rule wins.
type Matcher struct {
	rules []rule
	pick  Picker
}

// NewMatcher creates a Matcher; a nil picker uses math/rand
func NewMatcher(pick Picker) *Matcher {
	if pick == nil {
		pick = rand.Intn
	}
	return &Matcher{
		pick: pick,
		rules: []rule{
			{IntentLastMonthSavings, allOf("save", "last month"), respondLastMonthSavings},
			{IntentReduceSpending, anyOf("entertainment", "reduce"), respondReduceSpending},
			{IntentTopCategory, func(s string) bool {
				return strings.Contains(s, "biggest") && anyOf("spending", "category")(s)
			}, respondTopCategory},
			{IntentSavingsGoal, anyOf("savings goal", "track"), respondSavingsGoal},
			{IntentEMISummary, anyOf("emi", "loan"), respondEMISummary},
			{IntentBudgetPlan, anyOf("budget", "plan"), respondBudgetPlan},
		},
	}
}

// Classify returns the intent of the first matching rule
func (m *Matcher) Classify(text string) string {
	lower := strings.ToLower(text)
	for _, r := range m.rules {
		if r.match(lower) {
			return r.intent
		}
	}
	return IntentFallback
}

// Respond produces the reply for text using the record's figures
func (m *Matcher) Respond(text string, record *models.FinancialRecord) string {
	lower := strings.ToLower(text)
	for _, r := range m.rules {
		if r.match(lower) {
			return r.respond(record)
		}
	}
	return Fallbacks[m.pick(len(Fallbacks))]
}

func allOf(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, kw := range keywords {
			if !strings.Contains(s, kw) {
				return false
			}
		}
		return true
	}
}

func anyOf(keywords ...string) func(string) bool {
	return func(s string) bool {
		for _, kw := range keywords {
			if strings.Contains(s, kw) {
				return true
			}
		}
		return false
	}
}

// Responders

func respondLastMonthSavings(r *models.FinancialRecord) string {
	savings := insights.LastMonthSavings(r)
	rate, ok := insights.LastMonthSavingsRate(r)
	if !ok {
		return fmt.Sprintf("Last month, you saved %s. No income was recorded for last month, so I can't work out your savings rate.",
			format.INR(savings))
	}

	verdict := "good but could be improved"
	if savings > 25000 {
		verdict = "excellent"
	}
	return fmt.Sprintf("Last month, you saved %s. This represents %s of your income, which is %s!",
		format.INR(savings), format.Percent(rate), verdict)
}

func respondReduceSpending(r *models.FinancialRecord) string {
	spent := 8000.0
	if c, ok := insights.FindCategory(r, "Entertainment"); ok {
		spent = c.Amount
	}
	budget := format.RoundTo(spent*0.625, 1000)

	var b strings.Builder
	fmt.Fprintf(&b, "I noticed you spent %s on entertainment this month. Here are some tips to reduce it:\n\n", format.INR(spent))
	b.WriteString("🎬 Use streaming services instead of cinema halls\n")
	fmt.Fprintf(&b, "💰 Set a monthly entertainment budget of %s\n", format.INR(budget))
	b.WriteString("🎯 Look for free events and activities in your city\n")
	b.WriteString("👥 Split costs when going out with friends\n\n")
	fmt.Fprintf(&b, "You could potentially save %s/month this way!", format.INR(spent-budget))
	return b.String()
}

func respondTopCategory(r *models.FinancialRecord) string {
	top, ok := insights.TopCategory(r)
	if !ok {
		return "I don't see a category breakdown in your data yet. Upload a statement with categories and I'll find your biggest spend."
	}

	verdict := "reasonable"
	if top.Percentage > 30 {
		verdict = "quite high"
	}
	return fmt.Sprintf("Your biggest spending category is **%s** at %s (%s%% of total expenses). This seems %s for this category.",
		top.Category, format.INR(top.Amount), format.Number(top.Percentage), verdict)
}

func respondSavingsGoal(r *models.FinancialRecord) string {
	progress, ok := insights.GoalProgressPercent(r)
	if !ok {
		return fmt.Sprintf("You haven't set a savings goal yet, so there's nothing to track against. You've saved %s so far.",
			format.INR(r.TotalSavings))
	}

	if progress >= 75 {
		return fmt.Sprintf("You're 🎉 doing great! You've achieved %s of your %s savings goal. Keep up the excellent work!",
			format.Percent(progress), format.INR(r.SavingsGoal))
	}
	return fmt.Sprintf("You're ⚠️ behind your target! You've achieved %s of your %s savings goal. Consider increasing your monthly savings by ₹5,000 to get back on track.",
		format.Percent(progress), format.INR(r.SavingsGoal))
}

func respondEMISummary(r *models.FinancialRecord) string {
	overdue := len(insights.OverdueEMIs(r))

	next := "None scheduled"
	if e, ok := insights.NextDueEMI(r); ok {
		next = fmt.Sprintf("%s on %s", e.Name, e.DueDate.Display())
	}

	var b strings.Builder
	b.WriteString("📊 **EMI Summary:**\n\n")
	fmt.Fprintf(&b, "💳 Total Monthly EMI: %s\n", format.INR(insights.TotalEMI(r)))
	fmt.Fprintf(&b, "⚠️ Overdue Payments: %d\n", overdue)
	fmt.Fprintf(&b, "📅 Next Due: %s\n\n", next)
	if overdue > 0 {
		b.WriteString("🚨 Please pay your overdue EMIs to avoid penalty charges!")
	} else {
		b.WriteString("✅ All EMIs are up to date!")
	}
	return b.String()
}

func respondBudgetPlan(_ *models.FinancialRecord) string {
	return budgetPlan
}

const budgetPlan = `📋 **Recommended Budget Plan based on your data:**

💰 Income: ₹75,000/month
🏠 Fixed Expenses (50%): ₹37,500
   • EMI: ₹25,000
   • Bills: ₹12,500

🛒 Variable Expenses (30%): ₹22,500
   • Food: ₹12,000
   • Transport: ₹6,000
   • Others: ₹4,500

💰 Savings (20%): ₹15,000

This follows the 50-30-20 rule and should help you reach your financial goals!`
