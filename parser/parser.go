// Package parser converts xUnit v2 result documents into report.Report values.
package parser

import (
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/beevik/etree"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/drone/drone-xunit/report"
)

// Parser parses a results file into a report.
type Parser interface {
	Parse(path string) (*report.Report, error)
}

// Options tunes an XUnitV2 parser.
type Options struct {
	// Concurrency bounds the collections, and the tests within each
	// collection, processed at once. Zero or less uses GOMAXPROCS.
	Concurrency int
}

// XUnitV2 parses the xUnit v2 XML result format.
type XUnitV2 struct {
	log         logrus.FieldLogger
	concurrency int
}

var _ Parser = (*XUnitV2)(nil)

// New returns an xUnit v2 parser logging to log. A nil log discards output.
func New(log logrus.FieldLogger, opts Options) *XUnitV2 {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &XUnitV2{log: log, concurrency: concurrency}
}

// Parse reads the results file at path.
func (p *XUnitV2) Parse(path string) (*report.Report, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrapf(err, "failed to read xUnit results %s", path)
	}
	return p.ParseDocument(doc, path)
}

// ParseBytes parses an in-memory results document. path is only used for
// naming the report.
func (p *XUnitV2) ParseBytes(data []byte, path string) (*report.Report, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, "failed to parse xUnit results %s", path)
	}
	return p.ParseDocument(doc, path)
}

// ParseDocument builds a report from an already loaded document.
func (p *XUnitV2) ParseDocument(doc *etree.Document, path string) (*report.Report, error) {
	root := doc.Root()
	if root == nil {
		return nil, structuralf("%s has no root element", path)
	}
	if n := len(doc.ChildElements()); n > 1 {
		return nil, structuralf("%s has %d top-level elements, expected one root", path, n)
	}

	log := p.log.WithField("File", path)
	log.Debug("Parsing xUnit v2 results")

	rpt := &report.Report{
		FileName:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		AssemblyName: optionalAttr(root, "name", ""),
		TestRunner:   report.TestRunnerXUnitV2,
	}

	info, err := buildRunInfo(doc, path, rpt)
	if err != nil {
		return nil, err
	}
	if info != nil {
		rpt.AddRunInfo(info.Info)
	} else {
		log.Debug("No <assemblies> root, skipping run info")
	}

	// The document node is searched so a bare <collection> root is included.
	collections := descendants(&doc.Element, "collection")
	suites := make([]*report.TestSuite, len(collections))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, collection := range collections {
		g.Go(func() error {
			suite, err := p.parseSuite(collection)
			if err != nil {
				return err
			}
			suites[i] = suite
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var labels []string
	for _, suite := range suites {
		for _, test := range suite.TestList {
			rpt.StatusList = append(rpt.StatusList, test.Status)
			labels = append(labels, test.CategoryList...)
		}
		rpt.TestSuiteList = append(rpt.TestSuiteList, suite)
	}
	rpt.AddCategories(labels...)

	log.WithFields(logrus.Fields{
		"Suites": len(rpt.TestSuiteList),
		"Tests":  len(rpt.StatusList),
	}).Debug("Parsed xUnit v2 results")

	return rpt, nil
}

func (p *XUnitV2) parseSuite(el *etree.Element) (*report.TestSuite, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return nil, err
	}
	duration, err := requiredFloat(el, "time")
	if err != nil {
		return nil, err
	}

	elems := descendants(el, "test")
	tests := make([]*report.Test, len(elems))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, elem := range elems {
		g.Go(func() error {
			test, err := p.parseTest(elem)
			if err != nil {
				return errors.Wrapf(err, "collection %q", name)
			}
			tests[i] = test
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &report.TestSuite{
		Name:     name,
		Duration: duration,
		Status:   report.FixtureStatus(tests),
		TestList: tests,
	}, nil
}

func (p *XUnitV2) parseTest(el *etree.Element) (*report.Test, error) {
	name, err := requiredAttr(el, "name")
	if err != nil {
		return nil, err
	}
	result, err := requiredAttr(el, "result")
	if err != nil {
		return nil, err
	}
	duration, err := requiredFloat(el, "time")
	if err != nil {
		return nil, err
	}

	test := &report.Test{
		Name:         name,
		Status:       report.ToStatus(result),
		Duration:     duration,
		CategoryList: categories(el, true),
	}
	if test.Status == report.StatusUnknown {
		p.log.WithFields(logrus.Fields{"Test": name, "Result": result}).Warn("Unrecognized test result")
	}

	if failure := el.SelectElement("failure"); failure != nil {
		test.StatusMessage = childText(failure, "message")
		test.StackTrace = childText(failure, "stack-trace")
	}
	if reason := el.SelectElement("reason"); reason != nil {
		test.StatusMessage = reason.Text()
	}

	return test, nil
}
