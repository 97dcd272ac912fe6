package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rg0now/exam-trend-report/pkg/models"
)

// Writer handles output of analysis results.
type Writer struct {
	file   *os.File
	writer io.Writer
}

// NewWriter creates a new output writer. An empty path or "-" means stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "" || path == "-" {
		return &Writer{
			file:   nil,
			writer: os.Stdout,
		}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Writer{
		file:   file,
		writer: file,
	}, nil
}

// NewStreamWriter wraps an existing stream; Close is a no-op.
func NewStreamWriter(w io.Writer) *Writer {
	return &Writer{writer: w}
}

// WriteResult writes a single analysis result as a JSON line.
func (w *Writer) WriteResult(r models.AnalysisResult) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis %s: %w", r.ID(), err)
	}

	_, err = fmt.Fprintf(w.writer, "%s\n", data)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

// WriteResults writes multiple analysis results as JSON lines.
func (w *Writer) WriteResults(results []models.AnalysisResult) error {
	for _, r := range results {
		if err := w.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the output file if it was opened.
func (w *Writer) Close() error {
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// ReadResults parses JSON lines written by Writer. Blank lines are skipped.
func ReadResults(r io.Reader) ([]models.AnalysisResult, error) {
	var results []models.AnalysisResult
	scanner := bufio.NewScanner(r)

	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxCapacity)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var res models.AnalysisResult
		if err := json.Unmarshal(scanner.Bytes(), &res); err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		results = append(results, res)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadResults reads a JSON lines file.
func LoadResults(path string) ([]models.AnalysisResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadResults(file)
}
