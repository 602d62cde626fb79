// Package detector samples session logs and works out their record layout.
package detector

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ccollicutt/sessionstats/pkg/parser"
)

// DefaultSampleSize is the number of lines sampled when none is configured.
const DefaultSampleSize = 100

// DetectionResult holds the result of sampling a log.
type DetectionResult struct {
	Matches      []FormatMatch // Layouts that recognised at least one line, best first
	SampledLines int           // Number of non-empty lines sampled
	ParsedLines  int           // Lines the best layout turned into records
}

// FormatMatch describes how well one candidate layout fits the sample.
type FormatMatch struct {
	Candidate  *Candidate
	Confidence float64 // 0.0 to 1.0 (share of sampled lines parsed)
	MatchCount int     // Lines parsed as user or session records

	Kinds map[parser.RecordKind]int

	// NonNumericTimes counts session lines whose time field is not a plain
	// integer. Those sessions still aggregate, with a coerced value.
	NonNumericTimes int

	SampleUser    string
	SampleSession string
	SampleDropped string
}

// Detector samples log lines and scores candidate layouts.
type Detector struct {
	candidates []*Candidate
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithCandidate tries format ahead of the built-in layouts.
func WithCandidate(name string, format parser.RecordFormat) Option {
	return func(d *Detector) {
		d.candidates = append([]*Candidate{{Name: name, Format: format}}, d.candidates...)
	}
}

// New creates a new Detector with the default candidates.
func New(opts ...Option) *Detector {
	d := &Detector{
		candidates: DefaultCandidates(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file ("-" for stdin) and scores it.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	src := parser.NewFileSource([]string{path})
	defer src.Close()

	return d.DetectFromSource(ctx, src)
}

// DetectFromSource samples up to the configured number of lines from src.
func (d *Detector) DetectFromSource(ctx context.Context, src parser.LineSource) (*DetectionResult, error) {
	lines, err := d.sample(ctx, src)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines scores every candidate against lines.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}

	var sampled []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			sampled = append(sampled, line)
		}
	}
	result.SampledLines = len(sampled)
	if len(sampled) == 0 {
		return result
	}

	for _, c := range d.candidates {
		m := scoreCandidate(c, sampled)
		if m.MatchCount > 0 {
			result.Matches = append(result.Matches, m)
		}
	}

	// Stable so equal scores keep candidate order.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchCount > result.Matches[j].MatchCount
	})

	if len(result.Matches) > 0 {
		result.ParsedLines = result.Matches[0].MatchCount
	}

	return result
}

func scoreCandidate(c *Candidate, lines []string) FormatMatch {
	p := parser.NewRecordParser(c.Format)
	m := FormatMatch{
		Candidate: c,
		Kinds:     make(map[parser.RecordKind]int),
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		kind := p.Classify(trimmed)
		m.Kinds[kind]++

		switch kind {
		case parser.KindUser:
			m.MatchCount++
			if m.SampleUser == "" {
				m.SampleUser = trimmed
			}
		case parser.KindSession:
			m.MatchCount++
			if m.SampleSession == "" {
				m.SampleSession = trimmed
			}
			if _, session := p.ParseLine(trimmed); session != nil && !isPlainInt(session.Time) {
				m.NonNumericTimes++
			}
		default:
			if m.SampleDropped == "" {
				m.SampleDropped = trimmed
			}
		}
	}

	m.Confidence = float64(m.MatchCount) / float64(len(lines))
	return m
}

func isPlainInt(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// sample reads up to sampleSize non-empty lines.
// Uses simple head sampling for efficiency.
func (d *Detector) sample(ctx context.Context, src parser.LineSource) ([]string, error) {
	var lines []string
	for len(lines) < d.sampleSize {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line.Content) != "" {
			lines = append(lines, line.Content)
		}
	}
	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one layout matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
