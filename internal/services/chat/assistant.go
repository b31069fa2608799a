package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"findash/internal/clock"
	"findash/internal/models"
)

// DefaultTypingDelay is how long the assistant appears to type
const DefaultTypingDelay = 1500 * time.Millisecond

// ErrEmptyMessage is returned for blank input
var ErrEmptyMessage = errors.New("message is empty")

// Assistant wraps a Matcher with the simulated typing delay
type Assistant struct {
	matcher *Matcher
	delay   time.Duration
	sleep   clock.Sleeper
	log     *logrus.Logger
}

// NewAssistant creates an Assistant. A nil sleeper uses clock.Sleep.
func NewAssistant(m *Matcher, delay time.Duration, sleep clock.Sleeper, log *logrus.Logger) *Assistant {
	if sleep == nil {
		sleep = clock.Sleep
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Assistant{matcher: m, delay: delay, sleep: sleep, log: log}
}

// TypingDelay reports the configured delay
func (a *Assistant) TypingDelay() time.Duration {
	return a.delay
}

// Reply waits out the typing delay and then answers text from the record
func (a *Assistant) Reply(ctx context.Context, text string, record *models.FinancialRecord) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	if err := a.sleep(ctx, a.delay); err != nil {
		return "", fmt.Errorf("waiting for reply: %w", err)
	}

	intent := a.matcher.Classify(text)
	a.log.WithFields(logrus.Fields{
		"intent": intent,
		"length": len(text),
	}).Debug("chat reply")

	return a.matcher.Respond(text, record), nil
}
