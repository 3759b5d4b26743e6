package workload

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seantiz/linebench/internal/model"
)

// maxLineSize bounds a single line accepted by ReadLines.
const maxLineSize = 1 << 20

// GenerationError reports a file that could not be written while generating
// a workload. It aborts the whole benchmark run.
type GenerationError struct {
	Path string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate workload file %s: %v", e.Path, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// FileName returns the deterministic name of the i-th workload file.
func FileName(i int) string {
	return fmt.Sprintf("file_%d.txt", i)
}

// Line returns the content of every line in the named file.
func Line(fileName string) string {
	return "Line from " + fileName
}

// Generate writes fileCount files of lineCount lines each into dir, creating
// the directory when needed, and returns the resulting workload in file index
// order.
func Generate(dir string, fileCount, lineCount int) (*model.Workload, error) {
	if fileCount < 1 {
		return nil, fmt.Errorf("file count must be positive, got %d", fileCount)
	}
	if lineCount < 0 {
		return nil, fmt.Errorf("line count must not be negative, got %d", lineCount)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &GenerationError{Path: dir, Err: err}
	}

	w := &model.Workload{
		Dir:       dir,
		Files:     make([]string, 0, fileCount),
		LineCount: lineCount,
	}
	for i := 0; i < fileCount; i++ {
		path := filepath.Join(dir, FileName(i))
		if err := WriteFile(path, lineCount); err != nil {
			return nil, err
		}
		w.Files = append(w.Files, path)
	}
	return w, nil
}

// WriteFile writes lineCount lines identifying path's base name.
func WriteFile(path string, lineCount int) error {
	f, err := os.Create(path)
	if err != nil {
		return &GenerationError{Path: path, Err: err}
	}

	line := Line(filepath.Base(path)) + "\n"
	bw := bufio.NewWriter(f)
	for i := 0; i < lineCount; i++ {
		if _, err := bw.WriteString(line); err != nil {
			f.Close()
			return &GenerationError{Path: path, Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return &GenerationError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &GenerationError{Path: path, Err: err}
	}
	return nil
}

// Remove deletes the workload directory and everything in it.
func Remove(w *model.Workload) error {
	if err := os.RemoveAll(w.Dir); err != nil {
		return fmt.Errorf("remove workload dir: %w", err)
	}
	return nil
}

// ReadLines opens path and calls fn for every line in order, without the
// trailing newline. It stops at the first error from fn or when ctx is done,
// and returns the number of lines delivered.
func ReadLines(ctx context.Context, path string, fn func(line string) error) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := NewScanner(f)
	var n int64
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := fn(scanner.Text()); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read %s: %w", path, err)
	}
	return n, nil
}

// NewScanner returns a line scanner sized for workload files.
func NewScanner(f *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}
