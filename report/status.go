package report

import "strings"

// Status is the outcome of a test or suite.
type Status int

const (
	StatusUnknown Status = iota
	StatusPassed
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "Passed"
	case StatusFailed:
		return "Failed"
	case StatusSkipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// ToStatus maps a runner outcome token to a Status. Unrecognized tokens map
// to StatusUnknown.
func ToStatus(token string) Status {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "pass", "passed", "success", "succeeded":
		return StatusPassed
	case "fail", "failed", "failure", "error", "errored":
		return StatusFailed
	case "skip", "skipped", "ignore", "ignored", "notrun", "not run":
		return StatusSkipped
	default:
		return StatusUnknown
	}
}

// FixtureStatus rolls the statuses of tests up to a single suite status.
// Failed dominates Skipped, which dominates Passed. An empty or all-unknown
// list is StatusUnknown.
func FixtureStatus(tests []*Test) Status {
	var passed, skipped bool
	for _, t := range tests {
		switch t.Status {
		case StatusFailed:
			return StatusFailed
		case StatusSkipped:
			skipped = true
		case StatusPassed:
			passed = true
		}
	}
	switch {
	case skipped:
		return StatusSkipped
	case passed:
		return StatusPassed
	default:
		return StatusUnknown
	}
}
