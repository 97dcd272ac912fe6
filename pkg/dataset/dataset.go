// Package dataset loads the exam history a report is generated from.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rg0now/exam-trend-report/pkg/models"
	"gopkg.in/yaml.v3"
)

// ErrEmptyDataset is returned when a dataset lists no exams.
var ErrEmptyDataset = errors.New("dataset has no exams")

// Format is a dataset file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

//go:embed sample.yaml
var sampleYAML []byte

// Sample returns the built-in sample dataset.
func Sample() (models.Dataset, error) {
	return Decode(sampleYAML, FormatYAML)
}

// Load reads a dataset file; the format follows the file extension.
// An empty path loads the sample dataset.
func Load(path string) (models.Dataset, error) {
	if path == "" {
		return Sample()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	ds, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return models.Dataset{}, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return ds, nil
}

// FormatFromPath picks JSON for .json files and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a dataset. Unknown fields and subjects are rejected.
func Decode(data []byte, format Format) (models.Dataset, error) {
	var ds models.Dataset

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&ds); err != nil {
			return models.Dataset{}, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&ds); err != nil {
			return models.Dataset{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return models.Dataset{}, fmt.Errorf("unsupported dataset format %q", format)
	}

	if len(ds.Exams) == 0 {
		return models.Dataset{}, ErrEmptyDataset
	}
	if ds.Title == "" {
		ds.Title = ds.Student + "成绩报告"
	}

	return ds, nil
}
