package models

// SuggestionType groups suggestions by the action they recommend
type SuggestionType string

const (
	SuggestSave   SuggestionType = "save"
	SuggestReduce SuggestionType = "reduce"
	SuggestInvest SuggestionType = "invest"
	SuggestAlert  SuggestionType = "alert"
)

// Priority is the urgency label attached to a suggestion
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is a derived, human-readable recommendation
type Suggestion struct {
	Type        SuggestionType `json:"type"`
	Priority    Priority       `json:"priority"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Impact      string         `json:"impact"`
	Category    string         `json:"category,omitempty"`
}

// TrackedSuggestion is a suggestion shown in a session, with the user's flags
type TrackedSuggestion struct {
	ID string `json:"id"`
	Suggestion
	Saved   bool `json:"saved"`
	Applied bool `json:"applied"`
}

// EMIBand classifies the EMI-to-monthly-income ratio
type EMIBand string

const (
	EMIHealthy       EMIBand = "healthy"
	EMICaution       EMIBand = "caution"
	EMIHighRisk      EMIBand = "high-risk"
	EMINotApplicable EMIBand = "not-applicable"
)

// EMIHealth is the EMI burden relative to average monthly income
type EMIHealth struct {
	Ratio float64 `json:"ratio"` // percent of monthly income
	Band  EMIBand `json:"band"`
}

// InsightsData bundles everything the suggestions tab shows
type InsightsData struct {
	Suggestions      []TrackedSuggestion `json:"suggestions"`
	HighPriority     int                 `json:"high_priority"`
	MediumPriority   int                 `json:"medium_priority"`
	LowPriority      int                 `json:"low_priority"`
	SavedCount       int                 `json:"saved_count"`
	AppliedCount     int                 `json:"applied_count"`
	LastMonthSavings float64             `json:"last_month_savings"`
	SavingsRate      *float64            `json:"savings_rate"`  // nil when income is zero
	GoalProgress     *float64            `json:"goal_progress"` // nil when no goal is set
	EMIHealth        EMIHealth           `json:"emi_health"`
}
