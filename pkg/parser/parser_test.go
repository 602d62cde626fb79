package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, src LineSource) []*Line {
	t.Helper()
	ctx := context.Background()
	var lines []*Line
	for {
		line, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestFileSource_Next(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.txt")
	content := "user,0,Leida,Cira,0\nsession,0,0,Safari 29,87,2016-10-23\n\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	source := NewFileSource([]string{file})
	defer source.Close()

	lines := drain(t, source)
	require.Len(t, lines, 3)
	assert.Equal(t, "user,0,Leida,Cira,0", lines[0].Content)
	assert.Equal(t, 1, lines[0].LineNum)
	assert.Equal(t, file, lines[0].Source)
	assert.Equal(t, "", lines[2].Content)
	assert.Equal(t, 3, lines[2].LineNum)
}

func TestFileSource_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("user,1,A,A,1\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("user,2,B,B,2\nuser,3,C,C,3\n"), 0o644))

	source := NewFileSource([]string{a, b})
	defer source.Close()

	lines := drain(t, source)
	require.Len(t, lines, 3)
	assert.Equal(t, a, lines[0].Source)
	assert.Equal(t, b, lines[1].Source)
	assert.Equal(t, 1, lines[1].LineNum, "line numbers restart per file")
	assert.Equal(t, 2, lines[2].LineNum)
}

func TestFileSource_Stdin(t *testing.T) {
	source := NewFileSource([]string{StdinPath})
	source.stdin = strings.NewReader("user,1,A,B,2\n")
	defer source.Close()

	lines := drain(t, source)
	require.Len(t, lines, 1)
	assert.Equal(t, StdinPath, lines[0].Source)
}

func TestFileSource_EmptyFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	source := NewFileSource([]string{file})
	defer source.Close()

	_, err := source.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestFileSource_FileNotFound(t *testing.T) {
	source := NewFileSource([]string{"/nonexistent/data.txt"})
	defer source.Close()

	_, err := source.Next(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileSource_ContextCancellation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("user,1,A,B,2\n"), 0o644))

	source := NewFileSource([]string{file})
	defer source.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_Close(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("user,1,A,B,2\nuser,2,C,D,3\n"), 0o644))

	source := NewFileSource([]string{file})
	_, err := source.Next(context.Background())
	require.NoError(t, err)

	assert.NoError(t, source.Close())
	assert.NoError(t, source.Close(), "second close is a no-op")
}

func TestReaderSource(t *testing.T) {
	source := NewReaderSource("inline", strings.NewReader("a\nb\n"))
	lines := drain(t, source)

	require.Len(t, lines, 2)
	assert.Equal(t, "inline", lines[1].Source)
	assert.Equal(t, 2, lines[1].LineNum)
	assert.NoError(t, source.Close())
}

func TestReaderSource_LineEndings(t *testing.T) {
	source := NewReaderSource("crlf", strings.NewReader("a\r\n\nb"))
	lines := drain(t, source)

	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Content)
	assert.Equal(t, "", lines[1].Content)
	assert.Equal(t, "b", lines[2].Content)
}

func TestReaderSource_Oversized(t *testing.T) {
	source := NewReaderSource("big", strings.NewReader(strings.Repeat("x", 100)+"\nok\n"))
	source.maxLine = 32
	lines := drain(t, source)

	require.Len(t, lines, 2)
	assert.True(t, lines[0].Oversized)
	assert.Empty(t, lines[0].Content)
	assert.False(t, lines[1].Oversized)
	assert.Equal(t, "ok", lines[1].Content)
	assert.Equal(t, 2, lines[1].LineNum)
}
