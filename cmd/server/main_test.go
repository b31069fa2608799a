package main

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"findash/internal/clock"
	"findash/internal/config"
	"findash/internal/handlers/chat"
	"findash/internal/logger"
	"findash/internal/models"
	"findash/internal/services/dataloader"
	"findash/internal/services/session"
	"findash/internal/services/simulate"
	"findash/internal/services/storage"
	"findash/internal/testutil"
)

var testNow = time.Date(2024, time.August, 2, 10, 0, 0, 0, time.UTC)

// setupTestServer wires the app against a temp data directory with no delays
func setupTestServer(t *testing.T, overrides map[string]string) *testutil.TestServer {
	t.Helper()

	env := testutil.TestEnv(t)
	for k, v := range overrides {
		env[k] = v
	}
	c := config.FromEnv(func(k string) string { return env[k] })

	var err error
	store, err = storage.New(c.DataDirectory)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	log = logger.New("error", io.Discard)
	sleep = clock.NoDelay
	now = clock.Fixed(testNow)

	if err := SetupDependencies(c); err != nil {
		t.Fatalf("Failed to setup dependencies: %v", err)
	}

	ts := testutil.NewTestServer(t, SetupRouter())
	t.Cleanup(ts.Close)
	return ts
}

// createSession starts a session and returns its snapshot
func createSession(t *testing.T, ts *testutil.TestServer) session.Snapshot {
	t.Helper()

	var snap session.Snapshot
	testutil.AssertResponse(t, ts.POSTJSON("/api/sessions", nil)).
		Status(http.StatusCreated).
		ContentTypeJSON().
		Decode(&snap)
	if snap.ID == "" {
		t.Fatal("session has no id")
	}
	return snap
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`).
		Matches(`"sessions":\d+`).
		JSONField("record", "mock")
}

func TestVersionEndpoint(t *testing.T) {
	ts := setupTestServer(t, nil)

	testutil.AssertResponse(t, ts.GET("/api/version")).
		StatusOK().
		JSONField("name", "findash")
}

func TestSessionLifecycle(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID

	if snap.Page != session.PageLogin {
		t.Errorf("new session page = %q, want login", snap.Page)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Type != models.SenderBot {
		t.Errorf("new session messages = %+v", snap.Messages)
	}
	if len(snap.Suggestions) != 6 {
		t.Errorf("new session has %d suggestions, want 6", len(snap.Suggestions))
	}

	testutil.AssertResponse(t, ts.POSTJSON(base+"/login", nil)).
		StatusOK().
		JSONField("page", "upload")

	var up struct {
		Source     string           `json:"source"`
		LoadedFrom string           `json:"loaded_from"`
		Session    session.Snapshot `json:"session"`
	}
	testutil.AssertResponse(t, ts.POSTJSON(base+"/upload", map[string]string{"source": "statement.xlsx"})).
		StatusOK().
		Decode(&up)
	if up.LoadedFrom != "file" || up.Session.Page != session.PageDashboard {
		t.Errorf("upload response = %+v", up)
	}

	testutil.AssertResponse(t, ts.POSTJSON(base+"/upload", map[string]string{"source": simulate.SheetsToken})).
		StatusOK().
		Contains(`"loaded_from":"sheets"`)

	testutil.AssertResponse(t, ts.POSTJSON(base+"/upload", map[string]string{"source": "  "})).
		StatusBadRequest()

	testutil.AssertResponse(t, ts.POSTJSON(base+"/skip", nil)).
		StatusOK().
		JSONField("page", "dashboard")

	testutil.AssertResponse(t, ts.POSTJSON(base+"/chat/toggle", nil)).
		StatusOK().
		JSONField("chat_open", true)

	resp := ts.DELETE(base)
	testutil.AssertResponse(t, resp).Status(http.StatusNoContent)

	testutil.AssertResponse(t, ts.GET(base)).StatusNotFound()
}

func TestUnknownSession(t *testing.T) {
	ts := setupTestServer(t, nil)

	paths := []string{
		"/api/sessions/nope",
		"/api/sessions/nope/dashboard",
		"/api/sessions/nope/dashboard/income",
		"/api/sessions/nope/chat/messages",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			testutil.AssertResponse(t, ts.GET(p)).
				StatusNotFound().
				ContentTypeJSON().
				Contains("session not found")
		})
	}
}

func TestDashboardOverview(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)

	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID+"/dashboard")).
		StatusOK().
		ContainsAll(
			`"total_income":"₹4,57,000"`,
			`"total_savings":"₹1,65,000"`,
			`"goal_progress":"82.5%"`,
			`"savings_rate":"36.1%"`,
		).
		NotContains("NaN")
}

func TestDashboardOverviewTabs(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)

	body := testutil.ReadBody(t, ts.GET("/api/sessions/"+snap.ID+"/dashboard"))
	want := `"tabs":["income","expenses","savings","categories","emi","suggestions"]`
	if !strings.Contains(body, want) {
		t.Fatalf("expected %s in %s", want, body)
	}
	if !strings.Contains(body, `"savings_goal":"₹2,00,000"`) {
		t.Fatalf("unexpected savings goal display: %s", body)
	}
}

func TestDashboardTabs(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/dashboard/"

	tests := []struct {
		tab      string
		contains []string
	}{
		{"income", []string{`"total":457000`, `"highest":82000`}},
		{"expenses", []string{`"total":292000`, `"lowest":43000`}},
		{"savings", []string{`"goal_progress":82.5`, `"remaining_to_goal":35000`}},
		{"categories", []string{`"total_spending":71000`, `"category":"Food"`}},
		{"emi", []string{`"total_emi":48000`, `"overdue_count":1`, `"due_label":"3 days"`}},
		{"suggestions", []string{`"high_priority":3`, `"medium_priority":3`}},
	}

	for _, tt := range tests {
		t.Run(tt.tab, func(t *testing.T) {
			testutil.AssertResponse(t, ts.GET(base+tt.tab)).
				StatusOK().
				ContentTypeJSON().
				ContainsAll(tt.contains...)
		})
	}

	testutil.AssertResponse(t, ts.GET(base+"retirement")).StatusNotFound()
}

func TestSuggestionActions(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/suggestions/"
	first := snap.Suggestions[0].ID
	second := snap.Suggestions[1].ID

	testutil.AssertResponse(t, ts.POSTJSON(base+first+"/save", nil)).
		StatusOK().
		JSONField("saved", true)
	testutil.AssertResponse(t, ts.POSTJSON(base+first+"/save", nil)).
		StatusOK().
		JSONField("saved", false)

	testutil.AssertResponse(t, ts.POSTJSON(base+second+"/apply", nil)).
		StatusOK().
		JSONField("applied", true)

	testutil.AssertResponse(t, ts.DELETE(base+first)).Status(http.StatusNoContent)
	testutil.AssertResponse(t, ts.DELETE(base+first)).StatusNotFound()
	testutil.AssertResponse(t, ts.POSTJSON(base+"missing/save", nil)).StatusNotFound()

	var data models.InsightsData
	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID+"/suggestions")).
		StatusOK().
		Decode(&data)
	if len(data.Suggestions) != 5 || data.AppliedCount != 1 || data.SavedCount != 0 {
		t.Errorf("insights = %d suggestions, %d applied, %d saved",
			len(data.Suggestions), data.AppliedCount, data.SavedCount)
	}

	// a new upload re-derives suggestions and clears flags
	ts.POSTJSON("/api/sessions/"+snap.ID+"/skip", nil).Body.Close()
	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID+"/suggestions")).
		StatusOK().
		JSONField("applied_count", float64(0)).
		Decode(&data)
	if len(data.Suggestions) != 6 {
		t.Errorf("got %d suggestions after skip, want 6", len(data.Suggestions))
	}
}

func TestChatMessages(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/chat/messages"

	var out chat.PostResponse
	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]string{"text": "How much did I save last month?"})).
		StatusOK().
		Decode(&out)
	if out.Message.Type != models.SenderUser || out.Reply.Type != models.SenderBot {
		t.Errorf("unexpected senders: %+v", out)
	}
	if !strings.Contains(out.Reply.Content, "₹26,000") || !strings.Contains(out.Reply.Content, "34.7%") {
		t.Errorf("reply = %q", out.Reply.Content)
	}

	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]string{"text": "   "})).
		StatusBadRequest()

	var msgs []models.ChatMessage
	testutil.AssertResponse(t, ts.GET(base)).StatusOK().Decode(&msgs)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[1].Content != "How much did I save last month?" {
		t.Errorf("msgs[1] = %+v", msgs[1])
	}
}

func TestChatRateLimit(t *testing.T) {
	ts := setupTestServer(t, map[string]string{"FINDASH_CHAT_RATE": "0.001"})
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/chat/messages"

	// burst is 1 at this rate
	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]string{"text": "hi"})).StatusOK()
	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]string{"text": "hi again"})).
		Status(http.StatusTooManyRequests)
}

func TestChatPrompts(t *testing.T) {
	ts := setupTestServer(t, nil)

	var out chat.PromptsResponse
	testutil.AssertResponse(t, ts.GET("/api/chat/prompts")).StatusOK().Decode(&out)
	if len(out.Prompts) != 6 || !strings.HasPrefix(out.Greeting, "Hello!") {
		t.Errorf("prompts = %+v", out)
	}
}

func TestChatWebSocket(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)

	url := "ws" + strings.TrimPrefix(ts.BaseURL, "http") + "/api/sessions/" + snap.ID + "/chat/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()

	if err := conn.WriteJSON(chat.Frame{Type: "message", Text: "Show me my EMI summary"}); err != nil {
		t.Fatal(err)
	}

	var frames []chat.Frame
	for i := 0; i < 3; i++ {
		var f chat.Frame
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		frames = append(frames, f)
	}

	if frames[0].Type != "message" || frames[0].Message.Type != models.SenderUser {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if frames[1].Type != "typing" {
		t.Errorf("frame 1 = %+v", frames[1])
	}
	if frames[2].Type != "message" || !strings.Contains(frames[2].Message.Content, "Total Monthly EMI: ₹48,000") {
		t.Errorf("frame 2 = %+v", frames[2])
	}

	if err := conn.WriteJSON(chat.Frame{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	var f chat.Frame
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&f); err != nil || f.Type != "error" {
		t.Errorf("expected error frame, got %+v (%v)", f, err)
	}
}

func TestExport(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/export"

	testutil.AssertResponse(t, ts.GET("/api/export/options")).
		StatusOK().
		ContainsAll(`"key":"income"`, `"key":"savings"`, `"sheets"`)

	testutil.AssertResponse(t, ts.POSTJSON(base+"/open", nil)).
		StatusOK().
		JSONField("export_open", true)

	var receipt simulate.ExportReceipt
	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]interface{}{
		"sections": []string{"emis", "income", "emis"},
		"format":   "excel",
	})).StatusOK().Decode(&receipt)

	if receipt.FileName != "financial_report_20240802_100000.xlsx" {
		t.Errorf("file name = %q", receipt.FileName)
	}
	if len(receipt.Sections) != 2 || receipt.Sections[0] != simulate.SectionIncome {
		t.Errorf("sections = %v", receipt.Sections)
	}

	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID)).
		StatusOK().
		JSONField("export_open", false)

	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]interface{}{
		"sections": []string{"income"},
		"format":   "pdf",
	})).StatusBadRequest()

	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]interface{}{
		"sections": []string{"taxes"},
		"format":   "sheets",
	})).StatusBadRequest()

	// rejected submissions leave a closed dialog closed
	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID)).
		StatusOK().
		JSONField("export_open", false)
}

func TestExportFailureKeepsDialogOpen(t *testing.T) {
	ts := setupTestServer(t, nil)
	snap := createSession(t, ts)
	base := "/api/sessions/" + snap.ID + "/export"

	testutil.AssertResponse(t, ts.POSTJSON(base+"/open", nil)).StatusOK()
	testutil.AssertResponse(t, ts.POSTJSON(base, map[string]interface{}{
		"sections": []string{"income"},
		"format":   "pdf",
	})).StatusBadRequest()

	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID)).
		StatusOK().
		JSONField("export_open", true)
}

func TestRecordFixture(t *testing.T) {
	dir := t.TempDir()
	fixtureStore, err := storage.New(dir)
	if err != nil {
		t.Fatal(err)
	}
	r := models.MockRecord()
	r.SavingsGoal = 330000
	if err := dataloader.New(fixtureStore, "", nil).Save("household", r); err != nil {
		t.Fatal(err)
	}
	if err := fixtureStore.Seal("fixture-pass"); err != nil {
		t.Fatal(err)
	}

	ts := setupTestServer(t, map[string]string{
		"FINDASH_DATA_DIR":        dir,
		"FINDASH_RECORD_FILE":     "household",
		"FINDASH_RECORD_PASSWORD": "fixture-pass",
	})

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		JSONField("record", "household")

	snap := createSession(t, ts)
	testutil.AssertResponse(t, ts.GET("/api/sessions/"+snap.ID+"/dashboard")).
		StatusOK().
		Contains(`"goal_progress":"50.0%"`)
}
