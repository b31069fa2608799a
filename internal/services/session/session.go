// Package session owns the per-visitor state: the current FinancialRecord,
// the chat transcript, suggestion flags and which page/panels are open.
// All mutation goes through Session methods; readers get Snapshots.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"findash/internal/clock"
	"findash/internal/models"
	"findash/internal/services/chat"
	"findash/internal/services/insights"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

// Page is the top-level view a session is on
type Page string

const (
	PageLogin     Page = "login"
	PageUpload    Page = "upload"
	PageDashboard Page = "dashboard"
)

// Session is one visitor's in-memory state
type Session struct {
	mu sync.RWMutex

	id          string
	page        Page
	chatOpen    bool
	exportOpen  bool
	record      *models.FinancialRecord
	messages    []models.ChatMessage
	suggestions []models.TrackedSuggestion
	createdAt   time.Time
	now         clock.Now
}

// Snapshot is an immutable copy of a session's state
type Snapshot struct {
	ID          string                     `json:"id"`
	Page        Page                       `json:"page"`
	ChatOpen    bool                       `json:"chat_open"`
	ExportOpen  bool                       `json:"export_open"`
	Record      *models.FinancialRecord    `json:"record"`
	Messages    []models.ChatMessage       `json:"messages"`
	Suggestions []models.TrackedSuggestion `json:"suggestions"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// New creates a session on the login page holding record
func New(record *models.FinancialRecord, now clock.Now) *Session {
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:        uuid.New().String(),
		page:      PageLogin,
		createdAt: now(),
		now:       now,
	}
	s.setRecord(record)
	s.messages = []models.ChatMessage{s.newMessage(models.SenderBot, chat.Greeting)}
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Record returns the current record. Callers must treat it as read-only;
// it is replaced, never edited.
func (s *Session) Record() *models.FinancialRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record
}

// Page returns the current page
func (s *Session) Page() Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// Login moves the session to the upload page
func (s *Session) Login() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = PageUpload
}

// ReplaceRecord swaps in a new record (upload or skip) and opens the dashboard.
// Suggestions are re-derived, so no saved/applied flags survive.
func (s *Session) ReplaceRecord(record *models.FinancialRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRecord(record)
	s.page = PageDashboard
}

// ToggleChat opens or closes the chat panel and returns the new state
func (s *Session) ToggleChat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatOpen = !s.chatOpen
	return s.chatOpen
}

// SetExportOpen opens or closes the export dialog
func (s *Session) SetExportOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exportOpen = open
}

// AppendMessage adds a message to the transcript
func (s *Session) AppendMessage(sender models.Sender, content string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.newMessage(sender, content)
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the transcript
func (s *Session) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Suggestions returns a copy of the tracked suggestions
func (s *Session) Suggestions() []models.TrackedSuggestion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TrackedSuggestion(nil), s.suggestions...)
}

// SaveSuggestion toggles the saved flag
func (s *Session) SaveSuggestion(id string) (models.TrackedSuggestion, error) {
	return s.updateSuggestion(id, func(t *models.TrackedSuggestion) { t.Saved = !t.Saved })
}

// ApplySuggestion marks a suggestion applied; applying twice is a no-op
func (s *Session) ApplySuggestion(id string) (models.TrackedSuggestion, error) {
	return s.updateSuggestion(id, func(t *models.TrackedSuggestion) { t.Applied = true })
}

// IgnoreSuggestion removes a suggestion from the list
func (s *Session) IgnoreSuggestion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.suggestions {
		if t.ID == id {
			s.suggestions = append(s.suggestions[:i:i], s.suggestions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
}

// Insights assembles the suggestions tab
func (s *Session) Insights() *models.InsightsData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &models.InsightsData{
		Suggestions:      append([]models.TrackedSuggestion(nil), s.suggestions...),
		LastMonthSavings: insights.LastMonthSavings(s.record),
		EMIHealth:        insights.EMIHealth(s.record),
	}
	if rate, ok := insights.SavingsRate(s.record); ok {
		data.SavingsRate = &rate
	}
	if progress, ok := insights.GoalProgressPercent(s.record); ok {
		data.GoalProgress = &progress
	}

	for _, t := range s.suggestions {
		switch t.Priority {
		case models.PriorityHigh:
			data.HighPriority++
		case models.PriorityMedium:
			data.MediumPriority++
		case models.PriorityLow:
			data.LowPriority++
		}
		if t.Saved {
			data.SavedCount++
		}
		if t.Applied {
			data.AppliedCount++
		}
	}
	return data
}

// Snapshot returns a deep copy of the session state
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		ID:          s.id,
		Page:        s.page,
		ChatOpen:    s.chatOpen,
		ExportOpen:  s.exportOpen,
		Record:      s.record.Clone(),
		Messages:    append([]models.ChatMessage(nil), s.messages...),
		Suggestions: append([]models.TrackedSuggestion(nil), s.suggestions...),
		CreatedAt:   s.createdAt,
	}
}

func (s *Session) updateSuggestion(id string, fn func(*models.TrackedSuggestion)) (models.TrackedSuggestion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.suggestions {
		if s.suggestions[i].ID == id {
			fn(&s.suggestions[i])
			return s.suggestions[i], nil
		}
	}
	return models.TrackedSuggestion{}, fmt.Errorf("%w: %s", ErrSuggestionNotFound, id)
}

// setRecord must be called with mu held (or before the session is shared)
func (s *Session) setRecord(record *models.FinancialRecord) {
	if record == nil {
		record = models.MockRecord()
	}
	s.record = record

	derived := insights.DeriveSuggestions(record)
	s.suggestions = make([]models.TrackedSuggestion, 0, len(derived))
	for _, sg := range derived {
		s.suggestions = append(s.suggestions, models.TrackedSuggestion{
			ID:         uuid.New().String(),
			Suggestion: sg,
		})
	}
}

func (s *Session) newMessage(sender models.Sender, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New().String(),
		Type:      sender,
		Content:   content,
		Timestamp: s.now(),
	}
}
