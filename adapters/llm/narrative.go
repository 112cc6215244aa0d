package llm

import (
	"context"
	"fmt"
	"strings"

	"datascope/internal"
	"datascope/ports"
)

// Prompt truncation bounds keep request sizes predictable on wide datasets.
const (
	maxDescribeChars    = 1500
	maxCorrelationChars = 500
)

// InsightGenerator implements ports.NarrativeProvider. The narrative is
// strictly best-effort: any provider failure is logged and reported as
// "no narrative", never as an error.
type InsightGenerator struct {
	client Client
	cfg    Config
	log    *internal.Logger
}

var _ ports.NarrativeProvider = (*InsightGenerator)(nil)

// NewInsightGenerator builds a provider from config. Without an API key the
// generator is constructed unavailable.
func NewInsightGenerator(cfg Config, logger *internal.Logger) *InsightGenerator {
	cfg = cfg.withDefaults()
	var client Client
	if strings.TrimSpace(cfg.APIKey) != "" {
		client = &OpenAIClient{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			Temperature: cfg.Temperature,
		}
	}
	return newInsightGenerator(client, cfg, logger)
}

// NewInsightGeneratorWithClient wires an explicit client, used by tests and
// by callers with their own transport.
func NewInsightGeneratorWithClient(client Client, cfg Config, logger *internal.Logger) *InsightGenerator {
	return newInsightGenerator(client, cfg.withDefaults(), logger)
}

func newInsightGenerator(client Client, cfg Config, logger *internal.Logger) *InsightGenerator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &InsightGenerator{client: client, cfg: cfg, log: logger}
}

func (g *InsightGenerator) Available() bool {
	return g.client != nil
}

func (g *InsightGenerator) Generate(ctx context.Context, req ports.NarrativeRequest) (string, bool) {
	if g.client == nil {
		return "", false
	}
	text, err := g.client.ChatCompletion(ctx, g.cfg.Model, buildPrompt(req), g.cfg.MaxTokens)
	if err != nil {
		g.log.Warn("narrative generation failed: %v", err)
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		g.log.Warn("narrative provider returned empty text")
		return "", false
	}
	return text, true
}

func buildPrompt(req ports.NarrativeRequest) string {
	var b strings.Builder
	b.WriteString("You are given summary statistics of a tabular dataset.\n\n")
	fmt.Fprintf(&b, "Rows: %d, Columns: %d\n", req.Summary.RowCount, req.Summary.ColumnCount)
	fmt.Fprintf(&b, "Numeric columns: %s\n", joinOrNone(req.Summary.NumericColumns))
	fmt.Fprintf(&b, "Categorical columns: %s\n\n", joinOrNone(req.Summary.CategoricalColumns))
	fmt.Fprintf(&b, "Descriptive statistics:\n%s\n", truncateRunes(req.DescribeText, maxDescribeChars))
	if corr := truncateRunes(req.CorrelationText, maxCorrelationChars); strings.TrimSpace(corr) != "" {
		fmt.Fprintf(&b, "\nCorrelations:\n%s\n", corr)
	}
	b.WriteString("\nWrite 4-6 short insights in plain language: notable statistics, strong correlations, data quality issues, and one suggestion for further analysis. No markdown, one insight per line.")
	return b.String()
}

func joinOrNone(cols []string) string {
	if len(cols) == 0 {
		return "(none)"
	}
	return strings.Join(cols, ", ")
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
