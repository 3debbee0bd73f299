package parser

import (
	"github.com/beevik/etree"

	"github.com/drone/drone-xunit/report"
)

var (
	runInfoLabels = []struct{ attr, label string }{
		{"test-framework", "Test framework"},
		{"name", "Assembly name"},
		{"run-date", "Run date"},
		{"run-time", "Run time"},
	}
	runInfoCounters = []string{"total", "passed", "failed", "errors", "skipped", "time"}
)

// buildRunInfo reads run metadata from the first assembly of an assemblies
// document and stores the assembly counters on rpt. It returns nil when the
// document root is not an assemblies element.
func buildRunInfo(doc *etree.Document, path string, rpt *report.Report) (*report.RunInfo, error) {
	root := doc.Root()
	if root == nil || root.Tag != "assemblies" {
		return nil, nil
	}

	assembly := firstDescendant(root, "assembly")
	if assembly == nil {
		return nil, structuralf("<assemblies> in %s has no <assembly> element", path)
	}

	info := &report.RunInfo{TestRunner: rpt.TestRunner}
	info.Add("Test results file", path)
	for _, l := range runInfoLabels {
		v, err := requiredAttr(assembly, l.attr)
		if err != nil {
			return nil, err
		}
		info.Add(l.label, v)
	}

	counters := make([]float64, len(runInfoCounters))
	for i, attr := range runInfoCounters {
		v, err := requiredFloat(assembly, attr)
		if err != nil {
			return nil, err
		}
		counters[i] = v
	}
	rpt.Total, rpt.Passed, rpt.Failed = counters[0], counters[1], counters[2]
	rpt.Errors, rpt.Skipped, rpt.Duration = counters[3], counters[4], counters[5]

	return info, nil
}
