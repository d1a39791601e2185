package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/fulmenhq/scriptcat/pkg/catalog"
)

// catalogueCase collects findings that belong to no single entry, such as
// index drift.
const catalogueCase = "catalogue"

// JUnit renders res as a JUnit XML report with one testcase per manifest
// entry. Errors become failures; warnings go to system-out.
func JUnit(res *catalog.Result) ([]byte, error) {
	var labels []string
	seen := map[string]bool{}
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}
	for _, f := range res.Entries {
		add("[" + f + "]")
	}
	for _, e := range res.Errors {
		add(e.Entry)
	}
	for _, w := range res.Warnings {
		add(w.Entry)
	}

	failed := 0
	for _, label := range labels {
		if len(res.ErrorsFor(label)) > 0 {
			failed++
		}
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	suites := doc.CreateElement("testsuites")
	suites.CreateAttr("name", "scriptcat")
	suites.CreateAttr("tests", strconv.Itoa(len(labels)))
	suites.CreateAttr("failures", strconv.Itoa(failed))

	suite := suites.CreateElement("testsuite")
	suite.CreateAttr("name", fmt.Sprintf("manifest (%s)", res.Mode))
	suite.CreateAttr("tests", strconv.Itoa(len(labels)))
	suite.CreateAttr("failures", strconv.Itoa(failed))
	suite.CreateAttr("errors", "0")

	props := suite.CreateElement("properties")
	prop := props.CreateElement("property")
	prop.CreateAttr("name", "manifest")
	prop.CreateAttr("value", res.Manifest)

	for _, label := range labels {
		tc := suite.CreateElement("testcase")
		tc.CreateAttr("classname", "scriptcat."+string(res.Mode))
		tc.CreateAttr("name", caseName(label))
		for _, f := range res.ErrorsFor(label) {
			fe := tc.CreateElement("failure")
			fe.CreateAttr("type", string(f.Kind))
			fe.CreateAttr("message", f.Message)
			fe.SetText(f.Message)
		}
		if ws := res.WarningsFor(label); len(ws) > 0 {
			msgs := make([]string, 0, len(ws))
			for _, w := range ws {
				msgs = append(msgs, "warning: "+w.Message)
			}
			tc.CreateElement("system-out").SetText(strings.Join(msgs, "\n"))
		}
	}

	doc.Indent(2)
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write junit report: %w", err)
	}
	return buf.Bytes(), nil
}

// caseName turns a finding label into a testcase name: "[a.js]" -> "a.js".
func caseName(label string) string {
	if label == "" {
		return catalogueCase
	}
	if strings.HasPrefix(label, "[") && strings.HasSuffix(label, "]") {
		return label[1 : len(label)-1]
	}
	return label
}
