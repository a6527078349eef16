// Package report renders one-shot lookup results for the CLI.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for documentation and sharing
//
// Design decision: We separate report rendering from the event stream
// (which lives in the model package) so that adding an output format
// never touches the wire contract. A Collector folds a finished event
// stream into a Report; writers only ever see the Report.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
