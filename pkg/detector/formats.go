package detector

import "github.com/ccollicutt/sessionstats/pkg/parser"

// Candidate is a record layout the detector tries against sampled lines.
type Candidate struct {
	Name   string
	Format parser.RecordFormat
}

// DefaultCandidates returns the built-in layouts, most common first.
// They share the default user/session tags and differ only by delimiter.
func DefaultCandidates() []*Candidate {
	def := parser.DefaultRecordFormat()

	withDelimiter := func(name, delim string) *Candidate {
		f := def
		f.Delimiter = delim
		return &Candidate{Name: name, Format: f}
	}

	return []*Candidate{
		withDelimiter("comma", ","),
		withDelimiter("semicolon", ";"),
		withDelimiter("pipe", "|"),
		withDelimiter("tab", "\t"),
	}
}
