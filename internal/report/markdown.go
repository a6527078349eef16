package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	titler cases.Caser
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		titler:     cases.Title(language.English),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeModules(md, report)
	w.writeSites(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the lookup summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("Lookup Report")
	md.PlainText("")

	rows := [][]string{
		{"Topic", report.Topic},
		{"Input", "`" + report.Input + "`"},
	}
	if report.SearchType != "" {
		rows = append(rows, []string{"Mode", report.SearchType})
	}
	rows = append(rows,
		[]string{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Duration", report.Duration.String()},
		[]string{"Status", w.statusText(report)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *Report) string {
	if report.Status == "cancelled" {
		return "⚠️ Cancelled (partial results)"
	}
	if len(report.Errors) > 0 {
		return "✅ Complete (" + strconv.Itoa(len(report.Errors)) + " module error(s))"
	}
	return "✅ Complete"
}

// writeAlert writes an appropriate alert based on the outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *Report) {
	switch {
	case !report.HasResults():
		md.Note("No results were found for this identifier.")
	case len(report.Errors) > 0:
		md.Warningf(
			"%d module(s) failed during this lookup; results below may be incomplete.",
			len(report.Errors),
		)
	default:
		md.Tipf("All modules completed. %d module(s) returned results.", len(report.Modules))
	}
	md.PlainText("")
}

// writeModules writes one section per module payload.
func (w *MarkdownWriter) writeModules(md *markdown.Markdown, report *Report) {
	md.H2("Results")
	md.PlainText("")

	if len(report.Modules) == 0 {
		md.PlainText("No module results.")
		md.PlainText("")
		return
	}

	for _, name := range report.ModuleNames() {
		md.H3(w.titler.String(name))
		md.PlainText("")

		rendered, err := json.MarshalIndent(report.Modules[name], "", "  ")
		if err != nil {
			md.PlainText("Unrenderable payload.")
			md.PlainText("")
			continue
		}
		md.CodeBlocks(markdown.SyntaxHighlightJSON, string(rendered))
		md.PlainText("")
	}
}

// writeSites writes a table of positive username-scan hits.
func (w *MarkdownWriter) writeSites(md *markdown.Markdown, report *Report) {
	if len(report.Sites) == 0 {
		return
	}

	md.H2("Sites Found")
	md.PlainText("")

	rows := make([][]string, len(report.Sites))
	for i, site := range report.Sites {
		info := site.ExtractedInfo
		if info == "" {
			info = "-"
		}
		rows[i] = []string{site.SiteName, site.URIPretty, info}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Site", "URL", "Extracted"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the per-module failure list.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *Report) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.BulletList(report.Errors...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by osintdeck*")
}
