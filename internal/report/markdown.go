package report

import (
	"fmt"
	"sort"

	"github.com/aymerick/raymond"
	"github.com/fulmenhq/scriptcat/internal/assets"
	"github.com/fulmenhq/scriptcat/pkg/catalog"
)

const markdownTemplate = "report/check.md.hbs"

// Markdown renders res through the embedded handlebars template.
func Markdown(res *catalog.Result) (string, error) {
	tplContent, ok := assets.GetTemplate(markdownTemplate)
	if !ok {
		return "", fmt.Errorf("embedded template not found: %s", markdownTemplate)
	}
	tpl, err := raymond.Parse(string(tplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}
	out, err := tpl.Exec(markdownData(res))
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}

func markdownData(res *catalog.Result) map[string]interface{} {
	suffix := ""
	if res.DryRun {
		suffix = " (dry run)"
	}

	data := map[string]interface{}{
		"manifest":     res.Manifest,
		"mode":         string(res.Mode),
		"total":        res.Total,
		"status":       upper.String(res.Status()),
		"dryRunSuffix": suffix,
		"errorCount":   len(res.Errors),
		"warningCount": len(res.Warnings),
	}

	if res.Checks.Headers {
		data["headers"] = map[string]interface{}{
			"present":       len(res.HeadersPresent),
			"missing_count": len(res.HeadersMissing),
			"missing":       sorted(res.HeadersMissing),
		}
	}
	if res.Checks.UpdateHeaders && len(res.HeadersUpdated) > 0 {
		data["updated"] = sorted(res.HeadersUpdated)
	}
	if res.Checks.Indent {
		invalid := append([]catalog.IndentFile(nil), res.IndentInvalid...)
		sort.Slice(invalid, func(i, j int) bool { return invalid[i].File < invalid[j].File })
		rows := make([]map[string]interface{}, 0, len(invalid))
		for _, f := range invalid {
			rows = append(rows, map[string]interface{}{"file": f.File, "count": len(f.Issues)})
		}
		data["indent"] = map[string]interface{}{
			"valid":         len(res.IndentValid),
			"invalid_count": len(invalid),
			"invalid":       rows,
		}
	}
	if res.Checks.FixIndent && len(res.IndentFixed) > 0 {
		data["fixed"] = sorted(res.IndentFixed)
	}

	if len(res.Errors) > 0 {
		data["errors"] = findingMessages(res.Errors)
	}
	if len(res.Warnings) > 0 {
		data["warnings"] = findingMessages(res.Warnings)
	}
	return data
}

func findingMessages(fs []catalog.Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Message)
	}
	return out
}
