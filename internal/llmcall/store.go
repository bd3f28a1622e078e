package llmcall

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
)

// Summary aggregates a set of recorded calls.
type Summary struct {
	Calls        int            `json:"calls" yaml:"calls"`
	Failed       int            `json:"failed" yaml:"failed"`
	InputTokens  int            `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int            `json:"output_tokens" yaml:"output_tokens"`
	TotalLatency int            `json:"total_latency_ms" yaml:"total_latency_ms"`
	ByModel      map[string]int `json:"by_model" yaml:"by_model"`
}

// TableHeaders implements api.Tabular.
func (s Summary) TableHeaders() []string {
	return []string{"Metric", "Value"}
}

// TableRows lists the totals followed by one row per model.
func (s Summary) TableRows() [][]string {
	rows := [][]string{
		{"calls", strconv.Itoa(s.Calls)},
		{"failed", strconv.Itoa(s.Failed)},
		{"input_tokens", strconv.Itoa(s.InputTokens)},
		{"output_tokens", strconv.Itoa(s.OutputTokens)},
		{"total_latency_ms", strconv.Itoa(s.TotalLatency)},
	}
	models := make([]string, 0, len(s.ByModel))
	for m := range s.ByModel {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		rows = append(rows, []string{"model " + m, strconv.Itoa(s.ByModel[m])})
	}
	return rows
}

// Read decodes JSON-line call records from r.
func Read(r io.Reader) ([]Call, error) {
	var calls []Call
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var c Call
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		calls = append(calls, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

// ReadFile decodes the trace file at path.
func ReadFile(path string) ([]Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Summarize totals tokens, latency and failures across calls.
func Summarize(calls []Call) Summary {
	s := Summary{ByModel: make(map[string]int)}
	for _, c := range calls {
		s.Calls++
		if !c.Success {
			s.Failed++
		}
		s.InputTokens += c.InputTokens
		s.OutputTokens += c.OutputTokens
		s.TotalLatency += c.LatencyMs
		s.ByModel[c.Model]++
	}
	return s
}
