package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Field counts, including the leading kind discriminator.
const (
	userFieldCount    = 5
	sessionFieldCount = 6
)

// RecordFormat describes how raw lines are split and tagged.
type RecordFormat struct {
	Delimiter  string
	UserTag    string
	SessionTag string
}

// DefaultRecordFormat is the comma-delimited `user,...` / `session,...` layout.
func DefaultRecordFormat() RecordFormat {
	return RecordFormat{
		Delimiter:  ",",
		UserTag:    string(KindUser),
		SessionTag: string(KindSession),
	}
}

// RecordParser turns raw lines into typed records.
//
// Parsing is best-effort: lines with an unknown discriminator or too few
// fields produce no record and are counted as dropped, never reported as errors.
type RecordParser struct {
	format RecordFormat
}

// NewRecordParser creates a parser for the given format.
// Zero-valued fields fall back to DefaultRecordFormat.
func NewRecordParser(format RecordFormat) *RecordParser {
	def := DefaultRecordFormat()
	if format.Delimiter == "" {
		format.Delimiter = def.Delimiter
	}
	if format.UserTag == "" {
		format.UserTag = def.UserTag
	}
	if format.SessionTag == "" {
		format.SessionTag = def.SessionTag
	}
	return &RecordParser{format: format}
}

// Classify reports which kind of record a line holds without building it.
func (p *RecordParser) Classify(line string) RecordKind {
	fields := p.split(line)
	switch fields[0] {
	case p.format.UserTag:
		if len(fields) < userFieldCount {
			return KindMalformed
		}
		return KindUser
	case p.format.SessionTag:
		if len(fields) < sessionFieldCount {
			return KindMalformed
		}
		return KindSession
	default:
		return KindUnknown
	}
}

// ParseLine parses one raw line. Exactly one of the returned pointers is
// non-nil when the line holds a record; both are nil otherwise.
func (p *RecordParser) ParseLine(line string) (*UserRecord, *SessionRecord) {
	fields := p.split(line)
	switch fields[0] {
	case p.format.UserTag:
		if len(fields) < userFieldCount {
			return nil, nil
		}
		return &UserRecord{
			ID:        fields[1],
			FirstName: fields[2],
			LastName:  fields[3],
			Age:       fields[4],
		}, nil
	case p.format.SessionTag:
		if len(fields) < sessionFieldCount {
			return nil, nil
		}
		return nil, &SessionRecord{
			UserID:    fields[1],
			SessionID: fields[2],
			Browser:   fields[3],
			Time:      fields[4],
			Date:      fields[5],
		}
	default:
		return nil, nil
	}
}

// Parse drains src and collects every user and session record in input order.
// Only read failures are returned; unparseable lines are dropped.
func (p *RecordParser) Parse(ctx context.Context, src LineSource) (*Records, error) {
	records := &Records{}

	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		records.LinesRead++
		if line.Oversized {
			records.LinesDropped++
			continue
		}

		user, session := p.ParseLine(line.Content)
		switch {
		case user != nil:
			records.Users = append(records.Users, *user)
		case session != nil:
			records.Sessions = append(records.Sessions, *session)
		default:
			records.LinesDropped++
		}
	}

	return records, nil
}

func (p *RecordParser) split(line string) []string {
	return strings.Split(strings.TrimSpace(line), p.format.Delimiter)
}
