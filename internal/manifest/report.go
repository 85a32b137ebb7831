package manifest

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// WriteMarkdownReport renders a human-readable crawl report: run summary,
// then a failure table when any record failed. The CSV manifest stays the
// machine-readable artifact; this is for sharing.
func WriteMarkdownReport(w io.Writer, rootURL string, m *Manifest) error {
	summary := m.Summary()

	md := markdown.NewMarkdown(w)

	md.H1("Crawl Manifest Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Root URL", "`" + rootURL + "`"},
			{"Digest", m.Algo()},
			{"Files Digested", strconv.FormatUint(summary.TotalFiles(), 10)},
			{"Failures", strconv.FormatUint(summary.TotalFailures(), 10)},
			{"Bytes Transferred", strconv.FormatUint(summary.TotalBytes(), 10)},
			{"Duration", summary.Duration().Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if summary.TotalFailures() == 0 {
		md.Tip("All discovered files were fetched and digested.")
	} else {
		md.Warningf(
			"%d file(s) could not be digested; see the error column of the manifest.",
			summary.TotalFailures(),
		)
		md.PlainText("")
		writeFailureTable(md, m)
	}
	md.PlainText("")

	md.HorizontalRule()
	md.PlainText("")
	md.PlainText(fmt.Sprintf("*Generated %s*", time.Now().Format("2006-01-02 15:04:05 MST")))

	return md.Build()
}

func writeFailureTable(md *markdown.Markdown, m *Manifest) {
	md.H2("Failures")
	md.PlainText("")

	var rows [][]string
	records := m.Records()
	for i := range records {
		record := &records[i]
		if !record.Failed() {
			continue
		}
		rows = append(rows, []string{record.Path(), record.Failure()})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Path", "Error"},
		Rows:   rows,
	})
}
