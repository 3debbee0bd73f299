package plugin

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/drone/drone-xunit/parser"
	"github.com/drone/drone-xunit/report"
)

// Args represents the plugin's configurable arguments.
type Args struct {
	ReportFilenamePattern string `envconfig:"PLUGIN_REPORT_FILENAME_PATTERN"`
	FailedFails           int    `envconfig:"PLUGIN_FAILED_FAILS"`
	FailedSkips           int    `envconfig:"PLUGIN_FAILED_SKIPS"`
	FailureOnErrors       bool   `envconfig:"PLUGIN_FAILURE_ON_ERRORS"`
	UnstableFails         int    `envconfig:"PLUGIN_UNSTABLE_FAILS"`
	UnstableSkips         int    `envconfig:"PLUGIN_UNSTABLE_SKIPS"`
	JobStatus             string `envconfig:"PLUGIN_JOB_STATUS"`
	ThresholdMode         int    `envconfig:"PLUGIN_THRESHOLD_MODE" default:"1"`
	PluginFailIfNoResults bool   `envconfig:"PLUGIN_FAIL_IF_NO_RESULTS"`
	Concurrency           int    `envconfig:"PLUGIN_CONCURRENCY"`
	Level                 string `envconfig:"PLUGIN_LOG_LEVEL"`
}

// ValidateInputs ensures the user inputs meet the plugin requirements.
func ValidateInputs(args Args) error {
	if args.ReportFilenamePattern == "" {
		return errors.New("missing required parameter: ReportFilenamePattern. Please specify the pattern to locate the xUnit report files")
	}
	if args.FailedFails < 0 || args.FailedSkips < 0 || args.UnstableFails < 0 || args.UnstableSkips < 0 {
		return errors.New("threshold values must be non-negative. Check the configured values for failed and skipped tests")
	}
	if args.ThresholdMode != ThresholdModeAbsolute && args.ThresholdMode != ThresholdModePercentage {
		return errors.New("invalid ThresholdMode value. It must be 1 (absolute) or 2 (percentage). Check the configuration")
	}
	if args.Concurrency < 0 {
		return errors.New("concurrency must be non-negative. Use 0 to match the number of CPUs")
	}
	return nil
}

// Exec parses the xUnit v2 reports matching the configured pattern, logs
// their details and validates the aggregate against the thresholds.
func Exec(ctx context.Context, args Args) error {
	return execWithLogger(ctx, args, logrus.StandardLogger())
}

func execWithLogger(ctx context.Context, args Args, log logrus.FieldLogger) error {
	files, err := locateFiles(args.ReportFilenamePattern, log)
	if err != nil && !errors.Is(err, errNoFiles) {
		log.WithError(err).Error("Error locating files")
		return errors.Wrap(err, "failed to locate files")
	}

	if len(files) == 0 {
		if args.PluginFailIfNoResults {
			return errors.New("no xUnit XML report files found. Check the report file pattern")
		}
		log.Warn("No xUnit XML report files found, continuing execution as PluginFailIfNoResults is false")
		return nil
	}

	p := parser.New(log, parser.Options{Concurrency: args.Concurrency})

	var aggregated Results
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		results, err := processFile(p, file, log)
		if err != nil {
			log.WithField("File", file).WithError(err).Error("Error processing file")
			return errors.Wrap(err, "failed to process file")
		}
		aggregated.Add(results)
	}

	log.Infof("\n===============================================")
	log.Infof("\nTotal Tests Results: %d | Failures: %d | Errors: %d | Skips: %d | Duration: %.3f s",
		aggregated.Total, aggregated.Failures, aggregated.Errors, aggregated.Skipped, aggregated.Duration)
	log.Infof("\n===============================================")

	if err := validateThresholds(aggregated, args); err != nil {
		log.WithFields(logrus.Fields{
			"Total Tests": aggregated.Total,
			"Failures":    aggregated.Failures,
			"Errors":      aggregated.Errors,
			"Skipped":     aggregated.Skipped,
			"Duration":    aggregated.Duration,
		}).Error(err.Error())
		return err
	}

	return nil
}

var errNoFiles = errors.New("no files found matching the report filename pattern")

// locateFiles identifies files matching the given pattern. Patterns may use
// ** to match across directories.
func locateFiles(pattern string, log logrus.FieldLogger) ([]string, error) {
	if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
		err := doublestar.ErrBadPattern
		log.WithError(err).WithField("Pattern", pattern).Error("Error occurred while searching for files")
		return nil, errors.Wrap(err, "failed to search for files")
	}
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		log.WithError(err).WithField("Pattern", pattern).Error("Error occurred while searching for files")
		return nil, errors.Wrap(err, "failed to search for files")
	}
	if len(matches) == 0 {
		return nil, errNoFiles
	}
	return matches, nil
}

// processFile parses one xUnit v2 report and logs its details.
func processFile(p parser.Parser, filename string, log logrus.FieldLogger) (Results, error) {
	log.Infof("Processing file: %s", filename)

	if _, err := os.Stat(filename); err != nil {
		log.WithError(err).WithField("File", filename).Error("Failed to read file")
		return Results{}, errors.Wrap(err, "file not found")
	}

	rpt, err := p.Parse(filename)
	if err != nil {
		log.WithError(err).WithField("File", filename).Error("Failed to parse xUnit XML")
		return Results{}, errors.Wrap(err, "failed to parse xUnit XML")
	}

	logReportDetails(rpt, log)
	return summarize(rpt), nil
}

// summarize computes the plugin counts for a parsed report. Counts come from
// the parsed tests; errors and duration come from the assembly when present.
func summarize(rpt *report.Report) Results {
	results := Results{
		Total:    len(rpt.StatusList),
		Failures: rpt.StatusCount(report.StatusFailed),
		Errors:   int(rpt.Errors),
		Skipped:  rpt.StatusCount(report.StatusSkipped),
		Duration: rpt.Duration,
	}
	if len(rpt.RunInfo) == 0 {
		results.Duration = lo.SumBy(rpt.TestSuiteList, func(s *report.TestSuite) float64 { return s.Duration })
	}
	return results
}

func logReportDetails(rpt *report.Report, log logrus.FieldLogger) {
	if rpt.AssemblyName != "" {
		log.Infof("\nAssembly: %s", rpt.AssemblyName)
	}
	for _, entry := range rpt.RunInfo {
		log.Infof("\n%s: %s", entry.Label, entry.Value)
	}
	if len(rpt.CategoryList) > 0 {
		log.Infof("\nCategories: %s", strings.Join(rpt.CategoryList, ", "))
	}

	for _, suite := range rpt.TestSuiteList {
		results := Results{
			Total:    len(suite.TestList),
			Failures: countStatus(suite.TestList, report.StatusFailed),
			Skipped:  countStatus(suite.TestList, report.StatusSkipped),
			Duration: suite.Duration,
		}
		logSuiteSummary(suite.Name, suite.Status, results, log)
		logSuiteTestDetails(suite, log)
	}
}

func countStatus(tests []*report.Test, s report.Status) int {
	return lo.CountBy(tests, func(t *report.Test) bool { return t.Status == s })
}

// logSuiteSummary logs the summary banner of a suite.
func logSuiteSummary(name string, status report.Status, results Results, log logrus.FieldLogger) {
	log.Infof("\n===============================================")
	log.Infof("\nSuite: %s | Status: %s", name, status)
	log.Infof("\nTotal Tests: %d | Failures: %d | Skips: %d | Duration: %.3f s", results.Total, results.Failures, results.Skipped, results.Duration)
	log.Infof("\n===============================================")
}

// logSuiteTestDetails logs every test of a suite along with failure details.
func logSuiteTestDetails(suite *report.TestSuite, log logrus.FieldLogger) {
	log.Infof("\nTest Details:")
	for _, test := range suite.TestList {
		log.Infof("\n- Test: %s | Status: %s | Duration: %.3f s", test.Name, test.Status, test.Duration)
		if len(test.CategoryList) > 0 {
			log.Infof("\n    Categories: %s", strings.Join(test.CategoryList, ", "))
		}
		if test.StatusMessage == "" {
			continue
		}
		switch test.Status {
		case report.StatusFailed:
			log.Infof("\n    Message: %s", test.StatusMessage)
			if test.StackTrace != "" {
				log.Infof("\n    Stack Trace: %s", test.StackTrace)
			}
		case report.StatusSkipped:
			log.Infof("\n    Reason: %s", test.StatusMessage)
		}
	}
}

// validateThresholds validates test report thresholds based on aggregate results.
func validateThresholds(results Results, args Args) error {
	if args.FailureOnErrors && results.Errors > 0 {
		return errors.Newf("\nbuild marked as failed: %d assembly errors reported and FailureOnErrors is true", results.Errors)
	}

	failedJob := strings.ToUpper(args.JobStatus) == "FAILED"

	switch args.ThresholdMode {
	case ThresholdModeAbsolute:
		if err := validateAbsoluteThresholds(results, args); err != nil {
			return errors.Wrap(err, "\nabsolute threshold validation failed")
		}
		if failedJob {
			if err := validateUnstableAbsoluteThresholds(results, args); err != nil {
				return errors.Wrap(err, "\nfail absolute threshold validation failed")
			}
		}
	case ThresholdModePercentage:
		if err := validatePercentageThresholds(results, args); err != nil {
			return errors.Wrap(err, "\npercentage threshold validation failed")
		}
		if failedJob {
			if err := validateUnstablePercentageThresholds(results, args); err != nil {
				return errors.Wrap(err, "\nfail percentage threshold validation failed")
			}
		}
	default:
		return errors.Newf("\ninvalid ThresholdMode: %d, expected 1 (absolute) or 2 (percentage)", args.ThresholdMode)
	}
	return nil
}

func validateAbsoluteThresholds(results Results, args Args) error {
	if args.FailedFails > 0 && results.Failures > args.FailedFails {
		return errors.Newf("number of failed tests (%d) exceeded the failure threshold (%d)", results.Failures, args.FailedFails)
	}
	if args.FailedSkips > 0 && results.Skipped > args.FailedSkips {
		return errors.Newf("number of skipped tests (%d) exceeded the skip threshold (%d)", results.Skipped, args.FailedSkips)
	}
	return nil
}

func validatePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil
	}
	failureRate, skipRate := rates(results)

	if args.FailedFails > 0 && failureRate > float64(args.FailedFails) {
		return errors.Newf("failure rate (%.2f%%) exceeded the threshold (%.2f%%)", failureRate, float64(args.FailedFails))
	}
	if args.FailedSkips > 0 && skipRate > float64(args.FailedSkips) {
		return errors.Newf("skip rate (%.2f%%) exceeded the threshold (%.2f%%)", skipRate, float64(args.FailedSkips))
	}
	return nil
}

// validateUnstableAbsoluteThresholds checks absolute thresholds for marking the build as unstable.
func validateUnstableAbsoluteThresholds(results Results, args Args) error {
	if args.UnstableFails > 0 && results.Failures > args.UnstableFails {
		return errors.Newf("Build marked as fail: number of failed tests (%d) exceeded the unstable threshold (%d)", results.Failures, args.UnstableFails)
	}
	if args.UnstableSkips > 0 && results.Skipped > args.UnstableSkips {
		return errors.Newf("Build marked as fail: number of skipped tests (%d) exceeded the unstable threshold (%d)", results.Skipped, args.UnstableSkips)
	}
	return nil
}

// validateUnstablePercentageThresholds checks percentage-based thresholds for marking the build as unstable.
func validateUnstablePercentageThresholds(results Results, args Args) error {
	if results.Total == 0 {
		return nil
	}
	failureRate, skipRate := rates(results)

	if args.UnstableFails > 0 && failureRate > float64(args.UnstableFails) {
		return errors.Newf("Build marked as fail: failure rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", failureRate, float64(args.UnstableFails))
	}
	if args.UnstableSkips > 0 && skipRate > float64(args.UnstableSkips) {
		return errors.Newf("Build marked as fail: skip rate (%.2f%%) exceeded the unstable threshold (%.2f%%)", skipRate, float64(args.UnstableSkips))
	}
	return nil
}

func rates(results Results) (failureRate, skipRate float64) {
	total := float64(results.Total)
	return float64(results.Failures) / total * 100, float64(results.Skipped) / total * 100
}
