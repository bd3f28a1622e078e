package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jackzampolin/barback/internal/cocktail"
)

// previewLen is how many characters of an entry are logged.
const previewLen = 50

// Summary describes a completed run.
type Summary struct {
	Total      int            `json:"total" yaml:"total"`
	Kept       int            `json:"kept" yaml:"kept"`
	Dropped    int            `json:"dropped" yaml:"dropped"`
	OutputPath string         `json:"output_path" yaml:"output_path"`
	Categories map[string]int `json:"categories" yaml:"categories"`
}

// TableHeaders implements api.Tabular.
func (s *Summary) TableHeaders() []string {
	return []string{"Category", "Entries"}
}

// TableRows lists kept categories alphabetically, then the dropped count.
func (s *Summary) TableRows() [][]string {
	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names)+2)
	for _, name := range names {
		rows = append(rows, []string{name, strconv.Itoa(s.Categories[name])})
	}
	rows = append(rows,
		[]string{cocktail.NoCocktail.Display() + " (dropped)", strconv.Itoa(s.Dropped)},
		[]string{"Total", strconv.Itoa(s.Total)},
	)
	return rows
}

type runOptions struct {
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runOptions)

// WithLogger sets the logger used for per-entry progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		o.logger = logger
	}
}

// Run classifies entries in order, keeps everything that is not "No Cocktail",
// and writes the kept entries to outputPath as an indented JSON array.
//
// The output file is written once, after every entry has been classified.
// If any classification fails, Run returns the error and leaves outputPath
// untouched.
func Run(ctx context.Context, entries []string, c Classifier, outputPath string, opts ...Option) (*Summary, error) {
	o := runOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if c == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	summary := &Summary{
		Total:      len(entries),
		OutputPath: outputPath,
		Categories: make(map[string]int),
	}
	kept := make([]cocktail.Entry, 0, len(entries))

	for i, text := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		o.logger.Info("classifying menu entry", "index", i, "preview", preview(text))
		rec, err := c.Classify(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		o.logger.Info("classified menu entry", "index", i, "category", rec.Category.Display())

		if !rec.Category.IsCocktail() {
			summary.Dropped++
			continue
		}
		kept = append(kept, cocktail.EntryFrom(rec))
		summary.Kept++
		summary.Categories[rec.Category.Display()]++
	}

	if err := WriteEntries(outputPath, kept); err != nil {
		return nil, err
	}
	o.logger.Info("wrote cocktails", "path", outputPath, "kept", summary.Kept, "dropped", summary.Dropped)
	return summary, nil
}

// WriteEntries writes entries as an indented JSON array, replacing path
// atomically so readers never observe a partial file.
func WriteEntries(path string, entries []cocktail.Entry) error {
	if entries == nil {
		entries = []cocktail.Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode cocktails: %w", err)
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set output file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace output file: %w", err)
	}
	return nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLen {
		return text
	}
	return string(r[:previewLen]) + "..."
}
