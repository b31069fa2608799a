package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"findash/internal/clock"
	"findash/internal/format"
	apphttp "findash/internal/http"
	"findash/internal/services/insights"
	"findash/internal/services/session"
)

var (
	store *session.Store
	now   clock.Now
)

// Tabs lists the dashboard tabs in display order
var Tabs = []string{"income", "expenses", "savings", "categories", "emi", "suggestions"}

// Initialize sets up the dashboard package with required dependencies
func Initialize(st *session.Store, n clock.Now) {
	store = st
	now = n
}

// RegisterRoutes registers all dashboard routes
func RegisterRoutes(r chi.Router) {
	r.Get("/sessions/{id}/dashboard", handleOverview)
	r.Get("/sessions/{id}/dashboard/{tab}", handleTab)
}

// Overview is the header card row shown above the tabs
type Overview struct {
	TotalIncome   float64           `json:"total_income"`
	TotalExpenses float64           `json:"total_expenses"`
	TotalSavings  float64           `json:"total_savings"`
	SavingsGoal   float64           `json:"savings_goal"`
	SavingsRate   *float64          `json:"savings_rate"`
	GoalProgress  *float64          `json:"goal_progress"`
	Display       map[string]string `json:"display"`
	Tabs          []string          `json:"tabs"`
}

func handleOverview(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	rec := sess.Record()

	rate, rateOK := insights.SavingsRate(rec)
	progress, progressOK := insights.GoalProgressPercent(rec)

	ov := Overview{
		TotalIncome:   rec.TotalIncome,
		TotalExpenses: rec.TotalExpenses,
		TotalSavings:  rec.TotalSavings,
		SavingsGoal:   rec.SavingsGoal,
		Display: map[string]string{
			"total_income":   format.INR(rec.TotalIncome),
			"total_expenses": format.INR(rec.TotalExpenses),
			"total_savings":  format.INR(rec.TotalSavings),
			"savings_goal":   format.INR(rec.SavingsGoal),
			"savings_rate":   format.PercentOrNA(rate, rateOK),
			"goal_progress":  format.PercentOrNA(progress, progressOK),
		},
		Tabs: Tabs,
	}
	if rateOK {
		ov.SavingsRate = &rate
	}
	if progressOK {
		ov.GoalProgress = &progress
	}

	apphttp.WriteJSON(w, http.StatusOK, ov)
}

func handleTab(w http.ResponseWriter, r *http.Request) {
	sess, err := apphttp.SessionFrom(store, r)
	if err != nil {
		apphttp.Error(w, err)
		return
	}
	rec := sess.Record()

	var data interface{}
	switch tab := chi.URLParam(r, "tab"); tab {
	case "income":
		data = insights.SummarizeIncome(rec)
	case "expenses":
		data = insights.SummarizeExpenses(rec)
	case "savings":
		data = insights.SummarizeSavings(rec)
	case "categories":
		data = insights.SummarizeCategories(rec)
	case "emi":
		data = insights.SummarizeEMIs(rec, now())
	case "suggestions":
		data = sess.Insights()
	default:
		apphttp.ErrorResponse(w, "unknown dashboard tab: "+tab, http.StatusNotFound)
		return
	}

	apphttp.WriteJSON(w, http.StatusOK, data)
}
