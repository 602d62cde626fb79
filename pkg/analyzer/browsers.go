package analyzer

import (
	"sort"
	"strings"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// BrowserSet is the set of distinct uppercased browser names.
type BrowserSet map[string]struct{}

// CollectBrowsers builds the browser set over every parsed session,
// including sessions that belong to no known user.
func CollectBrowsers(sessions []parser.SessionRecord) BrowserSet {
	set := make(BrowserSet)
	for _, s := range sessions {
		set[strings.ToUpper(s.Browser)] = struct{}{}
	}
	return set
}

// Sorted returns the browser names in ascending order.
func (b BrowserSet) Sorted() []string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct browsers.
func (b BrowserSet) Len() int {
	return len(b)
}
