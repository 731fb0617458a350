package generator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is a dataset serialisation format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension, defaulting to JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode writes dataset to w.
func Encode(w io.Writer, dataset Dataset, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dataset); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dataset); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown dataset format %q", format)
	}
}

// Decode reads a dataset from r.
func Decode(r io.Reader, format Format) (Dataset, error) {
	var dataset Dataset
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&dataset); err != nil {
			return Dataset{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&dataset); err != nil {
			return Dataset{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return Dataset{}, fmt.Errorf("unknown dataset format %q", format)
	}
	return dataset, nil
}

// WriteDataset serialises the dataset to path, creating parent directories.
// The format follows the file extension.
func WriteDataset(dataset Dataset, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := Encode(file, dataset, FormatFor(path)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}

// ReadDataset loads a dataset written by WriteDataset.
func ReadDataset(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	dataset, err := Decode(file, FormatFor(path))
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return dataset, nil
}
