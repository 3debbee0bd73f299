// Package report holds the runner-agnostic model produced by the parsers.
package report

import (
	"slices"

	"github.com/samber/lo"
)

// TestRunner identifies the format a report was parsed from.
type TestRunner string

const (
	TestRunnerUnknown TestRunner = ""
	TestRunnerXUnitV2 TestRunner = "xunit-v2"
)

// Report is the parsed result of a single results file.
type Report struct {
	FileName     string
	AssemblyName string
	TestRunner   TestRunner
	RunInfo      []RunInfoEntry

	Total    float64
	Passed   float64
	Failed   float64
	Errors   float64
	Skipped  float64
	Duration float64

	// StatusList has one entry per test processed, used to build a status filter.
	StatusList    []Status
	CategoryList  []string
	TestSuiteList []*TestSuite
}

// TestSuite represents one collection of tests.
type TestSuite struct {
	Name     string
	Duration float64
	Status   Status
	TestList []*Test
}

// Test represents a single test case.
type Test struct {
	Name          string
	Status        Status
	Duration      float64
	StatusMessage string
	StackTrace    string
	CategoryList  []string
}

// RunInfoEntry is a single label/value pair of run metadata.
type RunInfoEntry struct {
	Label string
	Value string
}

// RunInfo is run metadata gathered before it is merged into a Report.
type RunInfo struct {
	TestRunner TestRunner
	Info       []RunInfoEntry
}

// Add appends a label/value pair.
func (r *RunInfo) Add(label, value string) {
	r.Info = append(r.Info, RunInfoEntry{Label: label, Value: value})
}

// AddRunInfo merges run metadata into the report, keeping insertion order.
func (r *Report) AddRunInfo(info []RunInfoEntry) {
	r.RunInfo = append(r.RunInfo, info...)
}

// RunInfoValue returns the value stored for label.
func (r *Report) RunInfoValue(label string) (string, bool) {
	entry, ok := lo.Find(r.RunInfo, func(e RunInfoEntry) bool { return e.Label == label })
	return entry.Value, ok
}

// AddCategories merges labels into the report category list. The list stays
// sorted and free of duplicates.
func (r *Report) AddCategories(labels ...string) {
	if len(labels) == 0 {
		return
	}
	r.CategoryList = lo.Uniq(append(r.CategoryList, labels...))
	slices.Sort(r.CategoryList)
}

// StatusCount returns how many processed tests ended with status s.
func (r *Report) StatusCount(s Status) int {
	return lo.Count(r.StatusList, s)
}

// TestCount returns the number of tests across all suites.
func (r *Report) TestCount() int {
	return lo.SumBy(r.TestSuiteList, func(s *TestSuite) int { return len(s.TestList) })
}
