// Package ai asks an LLM provider for a structured review of a batch of
// Postfix log lines. Providers return JSON shaped like Analysis; array
// items that come back as objects instead of strings are coerced.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// Statistics is the numeric portion of an analysis. Values stay strings:
// providers report percentages and counts in free form.
type Statistics struct {
	TotalMessages       string   `json:"totalMessages"`
	SuccessRate         string   `json:"successRate"`
	BounceRate          string   `json:"bounceRate"`
	DeferredRate        string   `json:"deferredRate"`
	TopSenderDomains    []string `json:"topSenderDomains"`
	TopRecipientDomains []string `json:"topRecipientDomains"`
	PeakActivityTime    string   `json:"peakActivityTime"`
}

// Analysis is the structured result served to the dashboard.
type Analysis struct {
	Summary         string     `json:"summary"`
	Anomalies       []string   `json:"anomalies"`
	Threats         []string   `json:"threats"`
	Errors          []string   `json:"errors"`
	Statistics      Statistics `json:"statistics"`
	Recommendations []string   `json:"recommendations"`
}

// Analyzer is one AI provider.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, logs string) (*Analysis, error)
}

// rawAnalysis tolerates providers that put objects where strings belong.
type rawAnalysis struct {
	Summary         string          `json:"summary"`
	Anomalies       []json.RawMessage `json:"anomalies"`
	Threats         []json.RawMessage `json:"threats"`
	Errors          []json.RawMessage `json:"errors"`
	Statistics      *Statistics       `json:"statistics"`
	Recommendations []json.RawMessage `json:"recommendations"`
}

func parseAnalysis(data []byte) (*Analysis, error) {
	var raw rawAnalysis
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed analysis response: %w", err)
	}

	out := &Analysis{
		Summary:         raw.Summary,
		Anomalies:       coerceStrings(raw.Anomalies),
		Threats:         coerceStrings(raw.Threats),
		Errors:          coerceStrings(raw.Errors),
		Recommendations: coerceStrings(raw.Recommendations),
	}
	if out.Summary == "" {
		out.Summary = "No summary provided"
	}
	if raw.Statistics != nil {
		out.Statistics = *raw.Statistics
	} else {
		out.Statistics = Statistics{
			TotalMessages:       "N/A",
			SuccessRate:         "N/A",
			BounceRate:          "N/A",
			DeferredRate:        "N/A",
			TopSenderDomains:    []string{},
			TopRecipientDomains: []string{},
			PeakActivityTime:    "N/A",
		}
	}
	return out, nil
}

func coerceStrings(items []json.RawMessage) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err == nil {
			found := false
			for _, key := range []string{"description", "text", "message"} {
				if v, ok := obj[key].(string); ok {
					out = append(out, v)
					found = true
					break
				}
			}
			if found {
				continue
			}
		}

		out = append(out, string(item))
	}
	return out
}
