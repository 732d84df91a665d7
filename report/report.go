// Package report renders the human-readable run output: the inventory
// breakdown and the final summary block.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/moepig/tagsweep/resources"
)

const summaryTemplate = `==== sweep summary ====
tagged:  {{.Succeeded}}
failed:  {{.Failed}}
skipped: {{.Skipped}}
elapsed: {{printf "%.1f" .ElapsedSeconds}}s
{{- if .FailedARNs}}
failed resources:
{{- range .FailedARNs}}
  - {{.}}
{{- end}}
{{- end}}
`

var summaryTmpl = template.Must(template.New("summary").Parse(summaryTemplate))

// SummaryData is the input to the summary block.
type SummaryData struct {
	Succeeded      int
	Failed         int
	Skipped        int
	ElapsedSeconds float64
	FailedARNs     []string
}

// RenderSummary renders the final summary block.
func RenderSummary(data SummaryData) (string, error) {
	var buf bytes.Buffer
	if err := summaryTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return buf.String(), nil
}

// FormatBreakdown lists the inventory per kind in a stable order.
func FormatBreakdown(counts map[resources.Kind]int) string {
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	var buf bytes.Buffer
	buf.WriteString("inventory to tag:\n")
	for _, kind := range kinds {
		fmt.Fprintf(&buf, "  %-32s %d\n", kind, counts[resources.Kind(kind)])
	}
	return buf.String()
}
