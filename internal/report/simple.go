package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeModules(&sb, report)
	w.writeSites(&sb, report)
	w.writeErrors(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the lookup summary block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         OSINTDECK LOOKUP\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Topic:      %s\n", report.Topic))
	sb.WriteString(fmt.Sprintf("Input:      %s\n", report.Input))
	if report.SearchType != "" {
		sb.WriteString(fmt.Sprintf("Mode:       %s\n", report.SearchType))
	}
	sb.WriteString(fmt.Sprintf("Started:    %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:   %s\n", report.Duration))

	switch {
	case report.Status == "cancelled":
		sb.WriteString("Status:     CANCELLED (partial results)\n")
	case len(report.Errors) > 0:
		sb.WriteString(fmt.Sprintf("Status:     Complete (%d module error(s))\n", len(report.Errors)))
	default:
		sb.WriteString("Status:     Complete\n")
	}

	sb.WriteString("\n")
}

// writeModules writes one section per module payload.
func (w *SimpleWriter) writeModules(sb *strings.Builder, report *Report) {
	if len(report.Modules) == 0 && !w.showEmpty {
		return
	}

	for _, name := range report.ModuleNames() {
		w.writeSectionHeading(sb, name)

		rendered, err := json.MarshalIndent(report.Modules[name], "  ", "  ")
		if err != nil {
			sb.WriteString("  (unrenderable payload)\n\n")
			continue
		}
		sb.WriteString("  ")
		sb.Write(rendered)
		sb.WriteString("\n\n")
	}

	if len(report.Modules) == 0 {
		w.writeSectionHeading(sb, "Results")
		sb.WriteString("  No results\n\n")
	}
}

// writeSites lists positive username-scan hits.
func (w *SimpleWriter) writeSites(sb *strings.Builder, report *Report) {
	if len(report.Sites) == 0 {
		return
	}

	w.writeSectionHeading(sb, "Sites Found")
	for _, site := range report.Sites {
		sb.WriteString(fmt.Sprintf("  [+] %s\n", site.SiteName))
		sb.WriteString(fmt.Sprintf("      %s\n", site.URIPretty))
		if site.ExtractedInfo != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", site.ExtractedInfo))
		}
	}
	sb.WriteString("\n")
}

// writeErrors lists per-module failures.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *Report) {
	if len(report.Errors) == 0 && !w.showEmpty {
		return
	}

	w.writeSectionHeading(sb, "Errors")
	if len(report.Errors) == 0 {
		sb.WriteString("  No errors\n")
	}
	for _, msg := range report.Errors {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", msg))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSectionHeading(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.ToUpper(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by osintdeck\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
