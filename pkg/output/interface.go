package output

import (
	"context"
	"fmt"
	"io"
)

// Formatter renders reports in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds run metadata to text output.
	Verbose bool

	// Quiet reduces text output to a single summary line.
	Quiet bool
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, opts FormatOptions) (Formatter, error) {
	switch name {
	case "", "json":
		return NewJSONFormatter(opts), nil
	case "text":
		return NewTextFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}
