package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"findash/internal/clock"
	"findash/internal/models"
	"findash/internal/services/chat"
)

func runScript(t *testing.T, script string) string {
	t.Helper()

	var out bytes.Buffer
	a := chat.NewAssistant(chat.NewMatcher(func(int) int { return 0 }), 0, clock.NoDelay, nil)
	err := newUI(true).repl(context.Background(), newScanReader(strings.NewReader(script)), &out, a, models.MockRecord())
	if err != nil {
		t.Fatalf("repl: %v", err)
	}
	return out.String()
}

func TestREPLAnswers(t *testing.T) {
	out := runScript(t, "How much did I save last month?\n\nWhat's my biggest spending category?\n")

	for _, want := range []string{
		chat.Greeting,
		"Last month, you saved ₹26,000",
		"Your biggest spending category is Food at ₹18,000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Error("markdown markers should be rendered, not printed")
	}
}

func TestREPLCommands(t *testing.T) {
	out := runScript(t, "/help\n/prompts\n5\n/suggestions\n/quit\nthis is never read\n")

	for _, want := range []string{
		"/suggestions    show savings suggestions",
		"6. Help me create a budget plan",
		"you › Show me my EMI summary",
		"Total Monthly EMI: ₹48,000",
		"[high] Reduce Food Expenses",
		"[medium] Start SIP Investment",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, chat.Fallbacks[0]) {
		t.Error("input after /quit was processed")
	}
}

func TestREPLFallback(t *testing.T) {
	out := runScript(t, "tell me a joke\n")
	if !strings.Contains(out, chat.Fallbacks[0]) {
		t.Errorf("expected first fallback, got:\n%s", out)
	}
}

func TestBotLine(t *testing.T) {
	got := newUI(true).botLine("Top is **Food** today")
	if got != "Top is Food today" {
		t.Errorf("botLine = %q", got)
	}
}
