package analyzer

import (
	"strings"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// BuildReport aggregates every user and composes the report.
//
// Global counts and the browser set come from the raw session list, so sessions
// without a matching user still count.
func BuildReport(users []User, sessions []parser.SessionRecord, browsers BrowserSet, policy MergePolicy) (*Report, error) {
	stats := make([]UserStats, len(users))
	for i, u := range users {
		stats[i] = AggregateUser(u)
	}
	return composeReport(users, stats, sessions, browsers, policy)
}

// composeReport assembles a report from users and their precomputed stats.
// stats[i] belongs to users[i].
func composeReport(users []User, stats []UserStats, sessions []parser.SessionRecord, browsers BrowserSet, policy MergePolicy) (*Report, error) {
	report := &Report{
		TotalUsers:          len(users),
		UniqueBrowsersCount: browsers.Len(),
		TotalSessions:       len(sessions),
		AllBrowsers:         strings.Join(browsers.Sorted(), ","),
	}

	for i, u := range users {
		if err := policy.Merge(&report.UsersStats, u.Attributes, stats[i]); err != nil {
			return nil, err
		}
	}

	return report, nil
}
