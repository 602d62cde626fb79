package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UsersStats maps display names to UserStats and remembers the order in which
// names were first set. Overwriting a name keeps its original position.
// The zero value is an empty map ready to use.
type UsersStats struct {
	keys   []string
	values map[string]UserStats
}

// Set stores stats under name.
func (s *UsersStats) Set(name string, stats UserStats) {
	if s.values == nil {
		s.values = make(map[string]UserStats)
	}
	if _, ok := s.values[name]; !ok {
		s.keys = append(s.keys, name)
	}
	s.values[name] = stats
}

// Get returns the stats stored under name.
func (s UsersStats) Get(name string) (UserStats, bool) {
	stats, ok := s.values[name]
	return stats, ok
}

// Has reports whether name is present.
func (s UsersStats) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Len returns the number of entries.
func (s UsersStats) Len() int {
	return len(s.keys)
}

// Keys returns the display names in insertion order.
func (s UsersStats) Keys() []string {
	return append([]string(nil), s.keys...)
}

// MarshalJSON encodes the entries as a JSON object in insertion order.
func (s UsersStats) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, name := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(name); err != nil {
			return nil, fmt.Errorf("encoding key %q: %w", name, err)
		}
		buf.Truncate(buf.Len() - 1) // Encode appends a newline
		buf.WriteByte(':')
		if err := enc.Encode(s.values[name]); err != nil {
			return nil, fmt.Errorf("encoding stats for %q: %w", name, err)
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
