// Package analyzer joins parsed session logs into per-user statistics and
// assembles the aggregate report.
package analyzer

import (
	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// User is one user record together with the sessions that reference it.
// It is built once by AssembleUsers and never mutated afterwards.
type User struct {
	Attributes parser.UserRecord
	Sessions   []parser.SessionRecord
}

// UserStats summarizes one user's sessions.
type UserStats struct {
	SessionsCount    int      `json:"sessionsCount"`
	TotalTime        string   `json:"totalTime"`
	LongestSession   string   `json:"longestSession"`
	Browsers         string   `json:"browsers"`
	UsedIE           bool     `json:"usedIE"`
	AlwaysUsedChrome bool     `json:"alwaysUsedChrome"`
	Dates            []string `json:"dates"`
}

// Report is the aggregate output of one run.
type Report struct {
	TotalUsers          int        `json:"totalUsers"`
	UniqueBrowsersCount int        `json:"uniqueBrowsersCount"`
	TotalSessions       int        `json:"totalSessions"`
	AllBrowsers         string     `json:"allBrowsers"`
	UsersStats          UsersStats `json:"usersStats"`
}

// HasSessions returns true if at least one session line was parsed.
func (r *Report) HasSessions() bool {
	return r.TotalSessions > 0
}
