package reminders

import (
	"strings"
	"testing"
	"time"

	"findash/internal/clock"
	"findash/internal/models"
	"findash/internal/services/session"
)

type fakeSessions []*session.Session

func (f fakeSessions) Each(fn func(*session.Session)) {
	for _, s := range f {
		fn(s)
	}
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		want     []string
		excluded []string
	}{
		{
			name:     "overdue only",
			now:      at(2024, time.July, 25),
			want:     []string{"Credit Card (₹8,000) is overdue since 28/07/2024"},
			excluded: []string{"Home Loan", "Car Loan"},
		},
		{
			name: "home loan inside window",
			now:  at(2024, time.August, 2),
			want: []string{
				"Credit Card (₹8,000) is overdue",
				"Home Loan (₹25,000) due in 3 days on 05/08/2024",
			},
			excluded: []string{"Car Loan"},
		},
		{
			name: "home loan past due date",
			now:  at(2024, time.August, 10),
			want: []string{
				"Home Loan (₹25,000) is overdue since 05/08/2024",
				"Car Loan (₹15,000) due in 2 days on 12/08/2024",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Build(models.MockRecord(), tt.now)
			if !ok {
				t.Fatal("expected a reminder")
			}
			if !strings.HasPrefix(msg, "⏰ EMI reminder:") {
				t.Errorf("unexpected header: %q", msg)
			}
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("missing %q in %q", w, msg)
				}
			}
			for _, x := range tt.excluded {
				if strings.Contains(msg, x) {
					t.Errorf("unexpected %q in %q", x, msg)
				}
			}
		})
	}
}

func TestBuildNothingDue(t *testing.T) {
	r := models.MockRecord()
	r.EMIs = []models.EMI{
		{Name: "Home Loan", Amount: 25000, DueDate: models.NewDate(2024, time.August, 5), Status: models.EMIPaid},
		{Name: "Car Loan", Amount: 15000, DueDate: models.NewDate(2024, time.August, 30), Status: models.EMIUpcoming},
	}

	if msg, ok := Build(r, at(2024, time.August, 1)); ok {
		t.Errorf("expected no reminder, got %q", msg)
	}
}

func TestBuildDueToday(t *testing.T) {
	r := &models.FinancialRecord{EMIs: []models.EMI{
		{Name: "Gym", Amount: 2000, DueDate: models.NewDate(2024, time.August, 5), Status: models.EMIUpcoming},
	}}

	msg, ok := Build(r, time.Date(2024, time.August, 5, 0, 0, 0, 0, time.UTC))
	if !ok || !strings.Contains(msg, "Gym (₹2,000) due today on 05/08/2024") {
		t.Errorf("got %q (ok=%v)", msg, ok)
	}
}

func TestScanOncePerDay(t *testing.T) {
	now := at(2024, time.August, 2)
	a := session.New(models.MockRecord(), clock.Fixed(now))
	b := session.New(&models.FinancialRecord{}, clock.Fixed(now))

	current := now
	s := New(fakeSessions{a, b}, func() time.Time { return current }, nil)

	if n := s.Scan(); n != 1 {
		t.Fatalf("first scan notified %d sessions, want 1", n)
	}
	msgs := a.Messages()
	if len(msgs) != 2 || msgs[1].Type != models.SenderBot {
		t.Fatalf("messages = %+v", msgs)
	}
	if len(b.Messages()) != 1 {
		t.Error("session without EMIs should not be reminded")
	}

	if n := s.Scan(); n != 0 {
		t.Errorf("second scan same day notified %d, want 0", n)
	}

	current = now.Add(24 * time.Hour)
	if n := s.Scan(); n != 1 {
		t.Errorf("next-day scan notified %d, want 1", n)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(fakeSessions{}, nil, nil)

	if err := s.Start("not a schedule"); err == nil {
		s.Stop()
		t.Fatal("expected error for invalid spec")
	}
}

func TestStartStop(t *testing.T) {
	s := New(fakeSessions{}, nil, nil)

	if err := s.Start(""); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
