// Package parser reads session logs and turns their lines into typed records.
package parser

// Line is a raw input line before record parsing.
type Line struct {
	// Content is the raw line text.
	Content string

	// Source is the file path this line came from ("-" for stdin).
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int

	// Oversized marks a line longer than MaxLineSize. Its content is discarded.
	Oversized bool
}

// UserRecord is a parsed `user,id,first_name,last_name,age` line.
type UserRecord struct {
	ID        string
	FirstName string
	LastName  string
	Age       string
}

// DisplayName returns "First Last", the key used in per-user report entries.
func (u UserRecord) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// SessionRecord is a parsed `session,user_id,session_id,browser,time,date` line.
// Time and Date are kept as text; coercion happens where they are aggregated.
type SessionRecord struct {
	UserID    string
	SessionID string
	Browser   string
	Time      string
	Date      string
}

// Records holds every record parsed from a log, in input order.
type Records struct {
	Users    []UserRecord
	Sessions []SessionRecord

	// LinesRead counts every line consumed from the source.
	LinesRead int

	// LinesDropped counts lines that produced no record.
	LinesDropped int
}

// RecordKind classifies a raw line.
type RecordKind string

const (
	KindUser      RecordKind = "user"
	KindSession   RecordKind = "session"
	KindUnknown   RecordKind = "unknown"
	KindMalformed RecordKind = "malformed"
)
