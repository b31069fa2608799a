// Package main smoke-tests a running findash server by walking one session
// through the page flow, dashboard tabs, chat and export options.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// check is one request; {id} in path is replaced by the session under test
type check struct {
	method string
	path   string
	body   string
	want   []string
}

func get(path string, want ...string) check { return check{method: http.MethodGet, path: path, want: want} }

func post(path, body string, want ...string) check {
	return check{method: http.MethodPost, path: path, body: body, want: want}
}

var checks = []check{
	get("/api/health", `"status":"ok"`),
	get("/api/version", `"name":"findash"`),

	get("/api/sessions/{id}", `"page":"login"`),
	post("/api/sessions/{id}/login", "", `"page":"upload"`),
	post("/api/sessions/{id}/skip", "", `"page":"dashboard"`),

	get("/api/sessions/{id}/dashboard", "total_income", "tabs"),
	get("/api/sessions/{id}/dashboard/income", "months"),
	get("/api/sessions/{id}/dashboard/expenses", "trend_pct"),
	get("/api/sessions/{id}/dashboard/savings", "remaining_to_goal"),
	get("/api/sessions/{id}/dashboard/categories", "ranked"),
	get("/api/sessions/{id}/dashboard/emi", "total_emi"),
	get("/api/sessions/{id}/dashboard/suggestions", "suggestions"),
	get("/api/sessions/{id}/suggestions", `"id"`),

	get("/api/chat/prompts", "prompts"),
	post("/api/sessions/{id}/chat/messages", `{"text":"Show me my EMI summary"}`, "EMI Summary"),
	get("/api/sessions/{id}/chat/messages"),

	get("/api/export/options", "sections"),
}

type checker struct {
	client  *http.Client
	baseURL string
	log     *logrus.Logger
}

func main() {
	url := flag.String("url", "http://localhost:8080", "base URL of the server to validate")
	verbose := flag.Bool("v", false, "log passing checks too")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	c := &checker{
		client:  &http.Client{Timeout: *timeout},
		baseURL: strings.TrimRight(*url, "/"),
		log:     log,
	}
	if failed := c.run(); failed > 0 {
		os.Exit(1)
	}
}

func (c *checker) run() int {
	id, err := c.createSession()
	if err != nil {
		c.log.WithError(err).Error("FAIL POST /api/sessions")
		return 1
	}
	c.log.WithFields(logrus.Fields{"url": c.baseURL, "session": id, "checks": len(checks)}).Info("validating")

	failed := 0
	for _, ch := range checks {
		ch.path = strings.ReplaceAll(ch.path, "{id}", id)
		start := time.Now()
		entry := c.log.WithFields(logrus.Fields{"method": ch.method, "path": ch.path})
		if err := c.do(ch); err != nil {
			failed++
			entry.WithError(err).Error("FAIL")
			continue
		}
		entry.WithField("took", time.Since(start).Round(time.Millisecond)).Debug("PASS")
	}

	c.log.WithFields(logrus.Fields{"passed": len(checks) - failed, "failed": failed}).Info("done")
	return failed
}

func (c *checker) createSession() (string, error) {
	resp, err := c.client.Post(c.baseURL+"/api/sessions", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("status %d, expected 201", resp.StatusCode)
	}
	var snap struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return "", fmt.Errorf("decoding session: %w", err)
	}
	return snap.ID, nil
}

func (c *checker) do(ch check) error {
	req, err := http.NewRequest(ch.method, c.baseURL+ch.path, strings.NewReader(ch.body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if ch.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("content type %q", ct)
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON body")
	}
	for _, w := range ch.want {
		if !strings.Contains(string(data), w) {
			return fmt.Errorf("body missing %q", w)
		}
	}
	return nil
}
