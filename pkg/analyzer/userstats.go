package analyzer

import (
	"sort"
	"strconv"
	"strings"
)

// Browser prefixes matched against uppercased browser names.
const (
	ChromePrefix           = "CHROME"
	InternetExplorerPrefix = "INTERNET EXPLORER"
)

// MinutesSuffix follows every rendered duration.
const MinutesSuffix = " min."

// CoerceMinutes converts a session time field to whole minutes.
//
// Leading whitespace and an optional sign are accepted, then the leading run of
// digits is used and anything after it ignored ("12abc" is 12). Text without a
// leading number, and numbers that overflow int, coerce to 0.
func CoerceMinutes(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FormatMinutes renders a duration as "<n> min.".
func FormatMinutes(n int) string {
	return strconv.Itoa(n) + MinutesSuffix
}

// AggregateUser folds a user's sessions into UserStats in one pass.
func AggregateUser(user User) UserStats {
	var (
		totalTime   int
		longest     int
		chromeCount int
		usedIE      bool
	)
	browsers := make([]string, 0, len(user.Sessions))
	dates := make([]string, 0, len(user.Sessions))

	for _, s := range user.Sessions {
		minutes := CoerceMinutes(s.Time)
		browser := strings.ToUpper(s.Browser)

		totalTime += minutes
		longest = max(longest, minutes)
		browsers = append(browsers, browser)
		dates = append(dates, s.Date)
		usedIE = usedIE || strings.HasPrefix(browser, InternetExplorerPrefix)
		if strings.HasPrefix(browser, ChromePrefix) {
			chromeCount++
		}
	}

	sort.Strings(browsers)
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	return UserStats{
		SessionsCount:    len(user.Sessions),
		TotalTime:        FormatMinutes(totalTime),
		LongestSession:   FormatMinutes(longest),
		Browsers:         strings.Join(browsers, ", "),
		UsedIE:           usedIE,
		AlwaysUsedChrome: chromeCount == len(user.Sessions),
		Dates:            dates,
	}
}
