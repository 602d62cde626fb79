package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/sessionstats/pkg/analyzer"
)

// TextFormatter formats reports as human-readable text.
// Styling is only applied when w is a terminal.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

type textStyles struct {
	header lipgloss.Style
	user   lipgloss.Style
	label  lipgloss.Style
	flag   lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		header: r.NewStyle().Bold(true),
		user:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:  r.NewStyle().Faint(true),
		flag:   r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if report == nil || report.Stats == nil {
		return errors.New("no report to format")
	}

	if f.opts.Quiet {
		return f.formatQuiet(report.Stats, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(stats *analyzer.Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "sessionstats: %d users, %d sessions, %d unique browsers\n",
		stats.TotalUsers,
		stats.TotalSessions,
		stats.UniqueBrowsersCount)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	st := newTextStyles(w)
	stats := report.Stats
	var b strings.Builder

	// Header
	b.WriteString(st.header.Render("=== Session Report ==="))
	b.WriteString("\n\n")

	for _, name := range stats.UsersStats.Keys() {
		us, _ := stats.UsersStats.Get(name)
		f.formatUser(&b, st, name, us)
	}

	// Summary
	b.WriteString("---\n")
	fmt.Fprintf(&b, "Summary: %d users, %d sessions, %d unique browsers\n",
		stats.TotalUsers,
		stats.TotalSessions,
		stats.UniqueBrowsersCount)
	if stats.AllBrowsers != "" {
		fmt.Fprintf(&b, "All browsers: %s\n", stats.AllBrowsers)
	}

	if f.opts.Verbose {
		meta := report.Metadata
		if meta.RunID != "" {
			fmt.Fprintf(&b, "Run: %s\n", meta.RunID)
		}
		if meta.ConfigFile != "" {
			fmt.Fprintf(&b, "Config: %s\n", meta.ConfigFile)
		}
		if len(meta.Sources) > 0 {
			fmt.Fprintf(&b, "Sources: %s\n", strings.Join(meta.Sources, ", "))
		}
		fmt.Fprintf(&b, "Duration: %s\n", meta.Duration.Round(1e6))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) formatUser(b *strings.Builder, st textStyles, name string, us analyzer.UserStats) {
	fmt.Fprintf(b, "%s\n", st.user.Render("["+name+"]"))

	if us.SessionsCount == 0 {
		b.WriteString("  No sessions\n\n")
		return
	}

	fmt.Fprintf(b, "  %s %d  %s %s  %s %s\n",
		st.label.Render("Sessions:"), us.SessionsCount,
		st.label.Render("Total:"), us.TotalTime,
		st.label.Render("Longest:"), us.LongestSession)
	fmt.Fprintf(b, "  %s %s\n", st.label.Render("Browsers:"), us.Browsers)

	var flags []string
	if us.UsedIE {
		flags = append(flags, "used IE")
	}
	if us.AlwaysUsedChrome {
		flags = append(flags, "always Chrome")
	}
	if len(flags) > 0 {
		fmt.Fprintf(b, "  %s\n", st.flag.Render(strings.Join(flags, ", ")))
	}

	fmt.Fprintf(b, "  %s %s\n\n", st.label.Render("Dates:"), strings.Join(us.Dates, ", "))
}
