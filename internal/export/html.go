package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/ijwi/citizen-server/internal/models"
)

var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

type templateData struct {
	Title       string
	Scope       string
	GeneratedAt string
	Metrics     [][2]string
	Table       tableData
}

type tableData struct {
	Headers []string
	Rows    [][]string
}

// renderHTML builds the printable page the PDF is generated from.
func renderHTML(report *models.Report) (string, error) {
	data := templateData{
		Title:       reportTitle(report.Type),
		Scope:       scopeLabel(report.Filters),
		GeneratedAt: formatTimestamp(report.CreatedAt),
	}

	switch report.Type {
	case models.ReportComplaints:
		var d models.ComplaintReportData
		if err := json.Unmarshal(report.Data, &d); err != nil {
			return "", fmt.Errorf("decode report data: %w", err)
		}
		data.Metrics = [][2]string{
			{"Total complaints", formatInt(d.Total)},
			{"Escalated", formatInt(d.Escalated)},
			{"Resolved", formatInt(d.Resolved)},
			{"Resolution rate", formatFloat(d.ResolutionRate) + "%"},
			{"Escalation rate", formatFloat(d.EscalationRate) + "%"},
			{"Avg resolution time", formatFloat(d.AvgResolutionHours) + " hours"},
		}
		data.Table.Headers = []string{"Status", "Count"}
		for _, sc := range d.ByStatus {
			data.Table.Rows = append(data.Table.Rows, []string{string(sc.Status), formatInt(sc.Count)})
		}
	case models.ReportFeedback:
		var d models.FeedbackReportData
		if err := json.Unmarshal(report.Data, &d); err != nil {
			return "", fmt.Errorf("decode report data: %w", err)
		}
		data.Metrics = [][2]string{{"Total feedback entries", formatInt(d.Total)}}
		data.Table.Headers = []string{"Service", "Count", "Average rating", "Satisfaction"}
		for _, st := range d.ByService {
			data.Table.Rows = append(data.Table.Rows, []string{
				string(st.ServiceType),
				formatInt(st.Count),
				formatFloat(st.AverageRating),
				formatFloat(st.SatisfactionPct) + "%",
			})
		}
	case models.ReportPerformance:
		var d models.PerformanceReportData
		if err := json.Unmarshal(report.Data, &d); err != nil {
			return "", fmt.Errorf("decode report data: %w", err)
		}
		data.Table.Headers = []string{"District", "Total", "Resolved", "Resolution rate", "Avg hours"}
		for _, dp := range d.Districts {
			data.Table.Rows = append(data.Table.Rows, []string{
				dp.District,
				formatInt(dp.Total),
				formatInt(dp.Resolved),
				formatFloat(dp.ResolutionRate) + "%",
				formatFloat(dp.AvgResolutionHours),
			})
		}
	case models.ReportEngagement:
		var d models.EngagementReportData
		if err := json.Unmarshal(report.Data, &d); err != nil {
			return "", fmt.Errorf("decode report data: %w", err)
		}
		data.Metrics = [][2]string{
			{"Discussions", formatInt(d.Discussions)},
			{"Resolved discussions", formatInt(d.ResolvedDiscussions)},
			{"Comments", formatInt(d.Comments)},
			{"Groups", formatInt(d.Groups)},
			{"Group memberships", formatInt(d.GroupMemberships)},
			{"Announcements", formatInt(d.Announcements)},
		}
	default:
		return "", fmt.Errorf("unknown report type %q", report.Type)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const reportHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 0; }
  h1 { font-size: 22px; margin-bottom: 4px; }
  .meta { color: #666; font-size: 12px; margin-bottom: 24px; }
  table { border-collapse: collapse; width: 100%; margin-top: 16px; }
  th, td { border: 1px solid #ccc; padding: 6px 10px; font-size: 13px; text-align: left; }
  th { background: #f3f3f3; }
  .metrics { margin-top: 8px; }
  .metrics div { font-size: 14px; padding: 3px 0; }
  .metrics span { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.Scope}} &middot; generated {{.GeneratedAt}}</div>
{{if .Metrics}}
<div class="metrics">
{{range .Metrics}}<div>{{index . 0}}: <span>{{index . 1}}</span></div>
{{end}}</div>
{{end}}
{{if .Table.Headers}}
<table>
<tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Table.Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
{{end}}
</body>
</html>`
