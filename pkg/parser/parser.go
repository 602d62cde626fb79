package parser

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// StdinPath is the input path that reads from standard input.
const StdinPath = "-"

// MaxLineSize is the longest line kept, in bytes. Longer lines are consumed
// and handed out as Oversized with no content.
const MaxLineSize = 16 * 1024 * 1024

// FileSource implements LineSource for reading from one or more files in order.
type FileSource struct {
	files []string
	stdin io.Reader

	currentFile   io.Closer
	currentSource *ReaderSource
	fileIndex     int
}

// NewFileSource creates a LineSource that reads the given files one after another.
// The path "-" reads from standard input.
func NewFileSource(files []string) *FileSource {
	return &FileSource{
		files:     files,
		stdin:     os.Stdin,
		fileIndex: -1,
	}
}

// SetStdin replaces the reader used for the "-" path.
func (s *FileSource) SetStdin(r io.Reader) {
	s.stdin = r
}

// Next returns the next raw line.
// Returns io.EOF when all files have been exhausted.
func (s *FileSource) Next(ctx context.Context) (*Line, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if s.currentSource == nil {
			if err := s.openNextFile(); err != nil {
				return nil, err
			}
		}

		line, err := s.currentSource.Next(ctx)
		if err == nil {
			return line, nil
		}
		if !errors.Is(err, io.EOF) {
			return nil, err
		}

		if err := s.closeCurrentFile(); err != nil {
			return nil, err
		}
	}
}

// Close releases resources.
func (s *FileSource) Close() error {
	return s.closeCurrentFile()
}

func (s *FileSource) openNextFile() error {
	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	if path == StdinPath {
		s.currentSource = NewReaderSource(path, s.stdin)
		return nil
	}

	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening input file %s: %w", path, err)
	}
	s.currentFile = f
	s.currentSource = NewReaderSource(path, f)

	return nil
}

func (s *FileSource) closeCurrentFile() error {
	s.currentSource = nil
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		return err
	}
	return nil
}

// ReaderSource implements LineSource over an arbitrary reader.
// The caller owns the reader; Close is a no-op.
type ReaderSource struct {
	name    string
	reader  *bufio.Reader
	maxLine int
	lineNum int
}

// NewReaderSource creates a LineSource reading lines from r, labelled with name.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name:    name,
		reader:  bufio.NewReaderSize(r, 64*1024),
		maxLine: MaxLineSize,
	}
}

// Next returns the next raw line, or io.EOF.
// A line longer than MaxLineSize comes back with Oversized set and no Content.
func (s *ReaderSource) Next(ctx context.Context) (*Line, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		buf       []byte
		oversized bool
		started   bool
	)
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if errors.Is(err, io.EOF) && !started {
			return nil, io.EOF
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading %s: %w", s.name, err)
		}
		started = true

		if !oversized {
			if len(buf)+len(chunk) > s.maxLine {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix || err != nil {
			break
		}
	}

	s.lineNum++
	return &Line{
		Content:   string(buf),
		Source:    s.name,
		LineNum:   s.lineNum,
		Oversized: oversized,
	}, nil
}

// Close is a no-op.
func (s *ReaderSource) Close() error {
	return nil
}
