// Package doctor implements the health checks behind 'parcel doctor'.
package doctor

import "context"

// Status is the outcome of one check item.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckItem is one line of a check. Hint tells the user how to repair a
// warning or failure.
type CheckItem struct {
	Label   string `json:"label"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Hint    string `json:"hint,omitempty"`
	Fixable bool   `json:"fixable,omitempty"`
}

// Result groups the items of one check.
type Result struct {
	Name  string      `json:"name"`
	Items []CheckItem `json:"items"`
}

// Check inspects one part of a parcel setup.
type Check interface {
	Name() string
	Run(ctx context.Context) Result
}

// Summary counts item outcomes. Fixable counts warnings and failures that
// --fix can repair.
type Summary struct {
	Passed  int `json:"passed"`
	Warned  int `json:"warned"`
	Failed  int `json:"failed"`
	Fixable int `json:"fixable"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Healthy bool     `json:"healthy"`
	Summary Summary  `json:"summary"`
	Checks  []Result `json:"checks"`
}

// Run executes checks in order and summarizes them. The setup is healthy
// when no item failed.
func Run(ctx context.Context, checks []Check) Report {
	report := Report{Checks: make([]Result, 0, len(checks))}

	for _, check := range checks {
		result := check.Run(ctx)
		for _, item := range result.Items {
			switch item.Status {
			case StatusPass:
				report.Summary.Passed++
			case StatusWarn:
				report.Summary.Warned++
			case StatusFail:
				report.Summary.Failed++
			}
			if item.Fixable && item.Status != StatusPass {
				report.Summary.Fixable++
			}
		}
		report.Checks = append(report.Checks, result)
	}

	report.Healthy = report.Summary.Failed == 0
	return report
}
