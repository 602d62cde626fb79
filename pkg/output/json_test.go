package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/sessionstats/pkg/analyzer"
)

func createTestReport() *Report {
	stats := &analyzer.Report{
		TotalUsers:          1,
		UniqueBrowsersCount: 2,
		TotalSessions:       2,
		AllBrowsers:         "CHROME,FIREFOX",
	}
	stats.UsersStats.Set("John Doe", analyzer.UserStats{
		SessionsCount:  2,
		TotalTime:      "40 min.",
		LongestSession: "30 min.",
		Browsers:       "CHROME, FIREFOX",
		Dates:          []string{"2024-01-02", "2024-01-01"},
	})

	return NewReport(stats, Metadata{
		RunID:      "run-1",
		ConfigFile: "config.yaml",
		Sources:    []string{"data.txt"},
		AnalyzedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
	})
}

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	require.NotNil(t, f)
	assert.Equal(t, "json", f.Name())
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), createTestReport(), &buf))

	want := `{"totalUsers":1,"uniqueBrowsersCount":2,"totalSessions":2,"allBrowsers":"CHROME,FIREFOX",` +
		`"usersStats":{"John Doe":{"sessionsCount":2,"totalTime":"40 min.","longestSession":"30 min.",` +
		`"browsers":"CHROME, FIREFOX","usedIE":false,"alwaysUsedChrome":false,"dates":["2024-01-02","2024-01-01"]}}}` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestJSONFormatter_Format_MetadataExcluded(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Verbose: true})

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), createTestReport(), &buf))

	assert.NotContains(t, buf.String(), "run-1")
	assert.NotContains(t, buf.String(), "config.yaml")
}

func TestJSONFormatter_Format_Empty(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	report := NewReport(&analyzer.Report{}, Metadata{})

	var buf bytes.Buffer
	require.NoError(t, f.Format(context.Background(), report, &buf))

	assert.Equal(t,
		`{"totalUsers":0,"uniqueBrowsersCount":0,"totalSessions":0,"allBrowsers":"","usersStats":{}}`+"\n",
		buf.String())
}

func TestJSONFormatter_Format_NoHTMLEscaping(t *testing.T) {
	stats := &analyzer.Report{TotalUsers: 1}
	stats.UsersStats.Set("Tom <&> Jerry", analyzer.UserStats{Dates: []string{}})

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatOptions{}).Format(context.Background(), NewReport(stats, Metadata{}), &buf))

	assert.Contains(t, buf.String(), `"Tom <&> Jerry"`)

	var parsed analyzer.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.True(t, parsed.UsersStats.Has("Tom <&> Jerry"))
}

func TestJSONFormatter_Format_NilReport(t *testing.T) {
	var buf bytes.Buffer
	err := NewJSONFormatter(FormatOptions{}).Format(context.Background(), &Report{}, &buf)
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "json", false},
		{"json", "json", false},
		{"text", "text", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name, FormatOptions{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Name())
		})
	}
}
