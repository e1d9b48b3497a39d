// Package diagnostics probes the Supabase project backing authentication
// to report on row-level-security configuration. Probes run as a fixed
// sequence; a failing probe is recorded and the sequence continues.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

// ProbeResult is the outcome of a single diagnostic probe
type ProbeResult struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Passed      bool          `json:"passed"`
	Detail      string        `json:"detail,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
}

// Report is the outcome of a full diagnostic run
type Report struct {
	RanAt   time.Time     `json:"ran_at"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	Results []ProbeResult `json:"results"`
}

type probe struct {
	name        string
	description string
	run         func(ctx context.Context) (string, error)
}

// Service runs the diagnostic probe sequence against Supabase
type Service struct {
	client *supabase.Client
	table  string
	logger *zap.Logger
}

// NewService creates a diagnostics service probing the given table
func NewService(client *supabase.Client, table string, logger *zap.Logger) *Service {
	return &Service{client: client, table: table, logger: logger}
}

// Run executes the full probe sequence and returns the report. Probe
// failures are part of the report, never an error; Run only needs a
// configured client to proceed.
func (s *Service) Run(ctx context.Context) *Report {
	probeID := fmt.Sprintf("diag-%d", time.Now().UnixNano())
	return s.execute(ctx, []probe{
		{
			name:        "anonymous-read",
			description: "anonymous role can read the table",
			run: func(ctx context.Context) (string, error) {
				data, count, err := s.client.From(s.table).Select("*", "exact", false).Limit(1, "").Execute()
				if err != nil {
					return "", interpretRLS(err)
				}
				_ = data
				return fmt.Sprintf("%d rows visible", count), nil
			},
		},
		{
			name:        "insert-probe-row",
			description: "current role can insert a probe row",
			run: func(ctx context.Context) (string, error) {
				row := map[string]any{"id": probeID, "note": "diagnostic probe"}
				_, _, err := s.client.From(s.table).Insert(row, false, "", "representation", "").Execute()
				if err != nil {
					return "", interpretRLS(err)
				}
				return "probe row inserted", nil
			},
		},
		{
			name:        "read-probe-row",
			description: "the inserted probe row is readable",
			run: func(ctx context.Context) (string, error) {
				data, _, err := s.client.From(s.table).Select("*", "exact", false).Eq("id", probeID).Execute()
				if err != nil {
					return "", interpretRLS(err)
				}
				var rows []map[string]any
				if err := json.Unmarshal(data, &rows); err != nil {
					return "", fmt.Errorf("unexpected response shape: %w", err)
				}
				if len(rows) == 0 {
					return "", fmt.Errorf("probe row not visible after insert")
				}
				return "probe row visible", nil
			},
		},
		{
			name:        "delete-probe-row",
			description: "current role can delete the probe row",
			run: func(ctx context.Context) (string, error) {
				_, _, err := s.client.From(s.table).Delete("", "").Eq("id", probeID).Execute()
				if err != nil {
					return "", interpretRLS(err)
				}
				return "probe row deleted", nil
			},
		},
	})
}

func (s *Service) execute(ctx context.Context, probes []probe) *Report {
	report := &Report{RanAt: time.Now(), Results: make([]ProbeResult, 0, len(probes))}
	for _, p := range probes {
		started := time.Now()
		detail, err := p.run(ctx)
		result := ProbeResult{
			Name:        p.name,
			Description: p.description,
			Passed:      err == nil,
			Detail:      detail,
			Duration:    time.Since(started),
		}
		if err != nil {
			result.Error = err.Error()
			report.Failed++
			s.logger.Warn("diagnostic probe failed",
				zap.String("probe", p.name),
				zap.Error(err),
			)
		} else {
			report.Passed++
		}
		report.Results = append(report.Results, result)
	}
	return report
}

// interpretRLS annotates errors that look like row-level-security
// rejections so the report reads as a configuration finding rather than
// a raw database error.
func interpretRLS(err error) error {
	message := err.Error()
	if strings.Contains(message, "row-level security") || strings.Contains(message, "42501") {
		return fmt.Errorf("blocked by row-level security policy: %w", err)
	}
	return err
}
