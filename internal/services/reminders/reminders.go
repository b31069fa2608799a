// Package reminders posts EMI due-date reminders into live chat sessions on a
// cron schedule.
package reminders

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"findash/internal/clock"
	"findash/internal/format"
	"findash/internal/models"
	"findash/internal/services/insights"
	"findash/internal/services/session"
)

const (
	// DefaultSchedule runs the scan every morning at 09:00
	DefaultSchedule = "0 9 * * *"

	// Window is how many days ahead an upcoming EMI triggers a reminder
	Window = 3
)

// Sessions is the part of the session store the scheduler needs
type Sessions interface {
	Each(fn func(*session.Session))
}

// Scheduler scans sessions for EMIs that are due soon or overdue
type Scheduler struct {
	sessions Sessions
	now      clock.Now
	log      *logrus.Logger
	cron     *cron.Cron

	mu       sync.Mutex
	reminded map[string]string // session id -> day last reminded
}

// New creates a Scheduler. Call Start to run it on schedule.
func New(sessions Sessions, now clock.Now, log *logrus.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		sessions: sessions,
		now:      now,
		log:      log,
		reminded: make(map[string]string),
	}
}

// Start registers the scan under the given cron spec and starts the runner
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		spec = DefaultSchedule
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { s.Scan() }); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c

	s.log.WithField("schedule", spec).Info("EMI reminders scheduled")
	return nil
}

// Stop halts the runner and waits for a running scan to finish
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Scan posts a reminder to every session with EMIs needing attention and
// returns how many sessions were notified. A session is reminded at most
// once per day.
func (s *Scheduler) Scan() int {
	now := s.now()
	today := now.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[string]bool)
	notified := 0
	s.sessions.Each(func(sess *session.Session) {
		live[sess.ID()] = true
		if s.reminded[sess.ID()] == today {
			return
		}

		msg, ok := Build(sess.Record(), now)
		if !ok {
			return
		}
		sess.AppendMessage(models.SenderBot, msg)
		s.reminded[sess.ID()] = today
		notified++
	})

	for id := range s.reminded {
		if !live[id] {
			delete(s.reminded, id)
		}
	}

	if notified > 0 {
		s.log.WithField("sessions", notified).Info("EMI reminders sent")
	}
	return notified
}

// Build composes the reminder text for a record, or reports false when no
// EMI is overdue or due within the window.
func Build(r *models.FinancialRecord, now time.Time) (string, bool) {
	var lines []string
	for _, e := range r.EMIs {
		if e.Status == models.EMIPaid {
			continue
		}
		days := insights.DaysUntil(e.DueDate, now)

		switch {
		case e.Status == models.EMIOverdue || days < 0:
			lines = append(lines, fmt.Sprintf("• %s (%s) is overdue since %s",
				e.Name, format.INR(e.Amount), e.DueDate.Display()))
		case days <= Window:
			lines = append(lines, fmt.Sprintf("• %s (%s) due %s on %s",
				e.Name, format.INR(e.Amount), dueIn(days), e.DueDate.Display()))
		}
	}

	if len(lines) == 0 {
		return "", false
	}
	return "⏰ EMI reminder:\n" + strings.Join(lines, "\n"), true
}

func dueIn(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
