package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/sessionstats/pkg/analyzer"
	"github.com/ccollicutt/sessionstats/pkg/config"
)

func runReportCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewReportCommand()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	assert.Equal(t, "report [config-file]", cmd.Use)
	for _, flag := range []string{
		"input", "output", "format", "workers", "merge-policy", "log-level",
		"verbose", "quiet", "webhook-url", "webhook-token", "webhook-trigger",
	} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRunReport_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "data.txt", sampleLog)
	t.Chdir(dir)

	_, stderr, err := runReportCommand(t, "")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "result.json"))
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(data))
	assert.Contains(t, stderr, "report written")
	assert.Contains(t, stderr, "run_id=")
}

func TestRunReport_ConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	input := writeFile(t, dir, "sessions.log", sampleLog)
	out := filepath.Join(dir, "out", "report.json")
	cfgPath := writeFile(t, dir, "config.yaml", "inputs: ["+input+"]\noutput: "+out+"\nworkers: 4\nlog: {level: error}\n")

	_, stderr, err := runReportCommand(t, "", cfgPath)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, sampleReport, string(data))
}

func TestRunReport_StdinToStdout(t *testing.T) {
	clearEnv(t)

	input := "user,1,John,Doe,30\n" +
		"session,1,s1,Chrome,10,2024-01-02\n" +
		"session,1,s2,Firefox,30,2024-01-01\n"

	stdout, _, err := runReportCommand(t, input, "-i", "-", "-o", "-", "--log-level", "error")
	require.NoError(t, err)

	want := `{"totalUsers":1,"uniqueBrowsersCount":2,"totalSessions":2,"allBrowsers":"CHROME,FIREFOX",` +
		`"usersStats":{"John Doe":{"sessionsCount":2,"totalTime":"40 min.","longestSession":"30 min.",` +
		`"browsers":"CHROME, FIREFOX","usedIE":false,"alwaysUsedChrome":false,"dates":["2024-01-02","2024-01-01"]}}}` + "\n"
	assert.Equal(t, want, stdout)
}

func TestRunReport_EmptyInput(t *testing.T) {
	clearEnv(t)

	stdout, _, err := runReportCommand(t, "", "-i", "-", "-o", "-", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t,
		`{"totalUsers":0,"uniqueBrowsersCount":0,"totalSessions":0,"allBrowsers":"","usersStats":{}}`+"\n",
		stdout)
}

func TestRunReport_MultipleInputsInOrder(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "a.txt", "user,1,John,Doe,30\n")
	second := writeFile(t, dir, "b.txt", "session,1,s1,Chrome 5,10,2024-01-02\n")

	stdout, _, err := runReportCommand(t, "", "-i", first, "-i", second, "-o", "-", "--log-level", "error")
	require.NoError(t, err)

	var report struct {
		UsersStats map[string]analyzer.UserStats `json:"usersStats"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	stats, ok := report.UsersStats["John Doe"]
	require.True(t, ok)
	assert.Equal(t, 1, stats.SessionsCount)
	assert.True(t, stats.AlwaysUsedChrome)
}

func TestRunReport_TextFormat(t *testing.T) {
	clearEnv(t)

	stdout, _, err := runReportCommand(t, sampleLog, "-i", "-", "-o", "-", "-f", "text", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, stdout, "[Leida Cira]")
	assert.Contains(t, stdout, "Summary: 3 users, 15 sessions, 14 unique browsers")
}

func TestRunReport_MergePolicyError(t *testing.T) {
	clearEnv(t)
	input := "user,1,John,Doe,30\nuser,2,John,Doe,40\n"

	_, _, err := runReportCommand(t, input, "-i", "-", "-o", "-", "--merge-policy", "error", "--log-level", "error")
	require.Error(t, err)
	assert.ErrorIs(t, err, analyzer.ErrDuplicateDisplayName)
}

func TestRunReport_InvalidFlag(t *testing.T) {
	clearEnv(t)

	_, _, err := runReportCommand(t, "", "-i", "-", "-o", "-", "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestRunReport_MissingInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, _, err := runReportCommand(t, "", "-i", filepath.Join(dir, "missing.txt"), "-o", filepath.Join(dir, "r.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, statErr := os.Stat(filepath.Join(dir, "r.json"))
	assert.True(t, os.IsNotExist(statErr), "no report is written on failure")
}

func TestRunReport_MissingConfig(t *testing.T) {
	clearEnv(t)

	_, _, err := runReportCommand(t, "", "/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestRunReport_Webhook(t *testing.T) {
	clearEnv(t)

	var (
		mu      sync.Mutex
		bodies  [][]byte
		headers []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, body)
		headers = append(headers, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	_, stderr, err := runReportCommand(t, sampleLog,
		"-i", "-", "-o", "-",
		"--webhook-url", server.URL,
		"--webhook-token", "tok",
		"--webhook-trigger", "non_empty",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "webhook sent")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Equal(t, "Bearer tok", headers[0])

	var payload struct {
		RunID  string `json:"runId"`
		Report struct {
			TotalSessions int `json:"totalSessions"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(bodies[0], &payload))
	assert.NotEmpty(t, payload.RunID)
	assert.Equal(t, 15, payload.Report.TotalSessions)
}

func TestRunReport_WebhookFailureDoesNotFailRun(t *testing.T) {
	clearEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, stderr, err := runReportCommand(t, sampleLog, "-i", "-", "-o", "-", "--webhook-url", server.URL)
	require.NoError(t, err)
	assert.Contains(t, stderr, "webhook failed")
}

func TestRunReport_WebhookNonEmptySkipsEmptyReport(t *testing.T) {
	clearEnv(t)

	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, _, err := runReportCommand(t, "user,1,John,Doe,30\n", "-i", "-", "-o", "-",
		"--webhook-url", server.URL, "--webhook-trigger", "non_empty", "--log-level", "error")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestShouldFireWebhook(t *testing.T) {
	tests := []struct {
		name        string
		trigger     config.WebhookTrigger
		hasSessions bool
		want        bool
	}{
		{"always with sessions", config.WebhookTriggerAlways, true, true},
		{"always without sessions", config.WebhookTriggerAlways, false, true},
		{"non_empty with sessions", config.WebhookTriggerNonEmpty, true, true},
		{"non_empty without sessions", config.WebhookTriggerNonEmpty, false, false},
		{"never with sessions", config.WebhookTriggerNever, true, false},
		{"empty trigger", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shouldFireWebhook(tt.trigger, tt.hasSessions))
		})
	}
}

func TestApplyReportFlags(t *testing.T) {
	cmd := NewReportCommand()
	require.NoError(t, cmd.Flags().Set("output", "out.json"))
	require.NoError(t, cmd.Flags().Set("workers", "3"))

	cfg := config.DefaultConfig()
	cfg.Format = config.OutputFormatText
	opts := &ReportOptions{
		Output:         "out.json",
		Workers:        3,
		Format:         "json",
		WebhookURL:     "https://example.com/hook",
		WebhookTrigger: string(config.WebhookTriggerAlways),
	}

	applyReportFlags(cmd, cfg, opts)

	assert.Equal(t, "out.json", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, config.OutputFormatText, cfg.Format, "unset flags keep config values")
	assert.Equal(t, []string{config.DefaultInput}, cfg.Inputs)
	require.Len(t, cfg.Webhooks, 1)
	assert.Equal(t, "cli", cfg.Webhooks[0].Name)
	assert.Equal(t, config.WebhookTriggerAlways, cfg.Webhooks[0].Trigger)
}
