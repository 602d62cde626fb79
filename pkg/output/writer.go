package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StdoutPath selects standard output as the report destination.
const StdoutPath = "-"

// WriteFile calls render with a writer for path and commits the result.
// The path "-" renders straight to stdout, or os.Stdout when stdout is nil.
//
// Files are written to a temporary sibling and renamed into place, so a
// failed run never leaves a truncated report behind. Missing parent
// directories are created.
func WriteFile(path string, stdout io.Writer, render func(io.Writer) error) error {
	if path == StdoutPath {
		if stdout == nil {
			stdout = os.Stdout
		}
		return render(stdout)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := render(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	// #nosec G302 -- reports are meant to be shared
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting report permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming report into place: %w", err)
	}
	committed = true

	return nil
}
