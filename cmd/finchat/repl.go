package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"findash/internal/models"
	"findash/internal/services/chat"
	"findash/internal/services/insights"
)

const helpText = `Ask anything about your finances, or:
  /prompts        list sample questions (type 1-6 to ask one)
  /suggestions    show savings suggestions
  /quit           exit`

type ui struct {
	title  lipgloss.Style
	bot    lipgloss.Style
	bold   lipgloss.Style
	dim    lipgloss.Style
	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
}

func newUI(plain bool) *ui {
	if plain {
		s := lipgloss.NewStyle()
		return &ui{title: s, bot: s, bold: s, dim: s, high: s, medium: s, low: s}
	}
	return &ui{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		bot:    lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		bold:   lipgloss.NewStyle().Bold(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")),
		high:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true),
		medium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
		low:    lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
	}
}

// repl reads questions until EOF or /quit and prints the assistant's replies
func (u *ui) repl(ctx context.Context, in lineReader, out io.Writer, a *chat.Assistant, record *models.FinancialRecord) error {
	fmt.Fprintln(out, u.botLine(chat.Greeting))
	fmt.Fprintln(out, u.dim.Render("Type /help for commands."))

	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			fmt.Fprintln(out, u.dim.Render(helpText))
			continue
		case "/prompts":
			for i, p := range chat.SamplePrompts {
				fmt.Fprintf(out, "%s %s\n", u.dim.Render(strconv.Itoa(i+1)+"."), p)
			}
			continue
		case "/suggestions":
			u.printSuggestions(out, record)
			continue
		}

		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(chat.SamplePrompts) {
			text = chat.SamplePrompts[n-1]
			fmt.Fprintln(out, u.dim.Render("you › "+text))
		}

		if a.TypingDelay() > 0 {
			fmt.Fprintln(out, u.dim.Render("assistant is typing…"))
		}
		reply, err := a.Reply(ctx, text, record)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, u.botLine(reply))
	}
}

// botLine styles a reply, rendering **bold** spans
func (u *ui) botLine(text string) string {
	parts := strings.Split(text, "**")
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 {
			b.WriteString(u.bold.Render(p))
		} else {
			b.WriteString(u.bot.Render(p))
		}
	}
	return b.String()
}

func (u *ui) printSuggestions(out io.Writer, record *models.FinancialRecord) {
	for _, s := range insights.DeriveSuggestions(record) {
		label := u.low
		switch s.Priority {
		case models.PriorityHigh:
			label = u.high
		case models.PriorityMedium:
			label = u.medium
		}
		fmt.Fprintf(out, "%s %s\n", label.Render("["+string(s.Priority)+"]"), u.bold.Render(s.Title))
		fmt.Fprintf(out, "    %s\n", s.Description)
		fmt.Fprintf(out, "    %s\n", u.dim.Render(s.Impact))
	}
}

// scanReader adapts a bufio.Scanner to lineReader
type scanReader struct {
	s *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	return &scanReader{s: bufio.NewScanner(r)}
}

func (r *scanReader) ReadLine() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
