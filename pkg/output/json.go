package output

import (
	"context"
	"encoding/json"
	"errors"
	"io"
)

// JSONFormatter writes the aggregate report as one compact JSON document
// followed by a newline. Field order is fixed and HTML characters are not
// escaped, so identical input always produces identical bytes.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if report == nil || report.Stats == nil {
		return errors.New("no report to format")
	}

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	return encoder.Encode(report.Stats)
}
