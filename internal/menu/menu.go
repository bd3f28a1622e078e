// Package menu loads the ordered menu entries to classify.
package menu

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads menu entries from path.
//
// .json, .yaml and .yml files must hold a top-level list of strings. Any other
// file is read as plain text where entries are separated by blank lines.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		entries, err := ParseList(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return entries, nil
	default:
		return ParseText(bytes.NewReader(data))
	}
}

// ParseList decodes a YAML or JSON list of strings, preserving order.
func ParseList(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid menu list: %w", err)
	}
	// Empty document
	if node.Kind == 0 || len(node.Content) == 0 {
		return []string{}, nil
	}
	root := node.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("menu must be a list of strings, line %d", root.Line)
	}

	entries := make([]string, 0, len(root.Content))
	for _, item := range root.Content {
		if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
			return nil, fmt.Errorf("menu entry at line %d is not a string", item.Line)
		}
		entries = append(entries, item.Value)
	}
	return entries, nil
}

// ParseText splits r into entries on blank lines. Entries are trimmed and
// empty ones are skipped.
func ParseText(r io.Reader) ([]string, error) {
	var (
		entries []string
		current []string
	)
	flush := func() {
		if text := strings.TrimSpace(strings.Join(current, "\n")); text != "" {
			entries = append(entries, text)
		}
		current = current[:0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read menu: %w", err)
	}
	flush()

	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}

// FromStrings returns an in-process menu as an ordered copy of entries.
// Entries are kept verbatim, and a nil slice yields an empty menu.
func FromStrings(entries []string) []string {
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}
