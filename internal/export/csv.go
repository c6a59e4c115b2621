package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ijwi/citizen-server/internal/models"
)

// renderCSV writes one table per report type. Each file starts with a small
// metadata header so exported files are self-describing.
func renderCSV(report *models.Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	meta := [][]string{
		{"report", reportTitle(report.Type)},
		{"scope", scopeLabel(report.Filters)},
		{"generated_at", formatTimestamp(report.CreatedAt)},
		{},
	}
	if err := w.WriteAll(meta); err != nil {
		return nil, err
	}

	var rows [][]string
	switch report.Type {
	case models.ReportComplaints:
		var data models.ComplaintReportData
		if err := json.Unmarshal(report.Data, &data); err != nil {
			return nil, fmt.Errorf("decode report data: %w", err)
		}
		rows = complaintRows(&data)
	case models.ReportFeedback:
		var data models.FeedbackReportData
		if err := json.Unmarshal(report.Data, &data); err != nil {
			return nil, fmt.Errorf("decode report data: %w", err)
		}
		rows = feedbackRows(&data)
	case models.ReportPerformance:
		var data models.PerformanceReportData
		if err := json.Unmarshal(report.Data, &data); err != nil {
			return nil, fmt.Errorf("decode report data: %w", err)
		}
		rows = performanceRows(&data)
	case models.ReportEngagement:
		var data models.EngagementReportData
		if err := json.Unmarshal(report.Data, &data); err != nil {
			return nil, fmt.Errorf("decode report data: %w", err)
		}
		rows = engagementRows(&data)
	default:
		return nil, fmt.Errorf("unknown report type %q", report.Type)
	}

	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func complaintRows(data *models.ComplaintReportData) [][]string {
	rows := [][]string{{"metric", "value"}}
	rows = append(rows,
		[]string{"total", formatInt(data.Total)},
		[]string{"escalated", formatInt(data.Escalated)},
		[]string{"resolved", formatInt(data.Resolved)},
		[]string{"resolution_rate", formatFloat(data.ResolutionRate)},
		[]string{"escalation_rate", formatFloat(data.EscalationRate)},
		[]string{"avg_resolution_hours", formatFloat(data.AvgResolutionHours)},
	)
	rows = append(rows, []string{}, []string{"status", "count"})
	for _, sc := range data.ByStatus {
		rows = append(rows, []string{string(sc.Status), formatInt(sc.Count)})
	}
	return rows
}

func feedbackRows(data *models.FeedbackReportData) [][]string {
	rows := [][]string{{"service_type", "count", "average_rating", "satisfaction_pct"}}
	for _, st := range data.ByService {
		rows = append(rows, []string{
			string(st.ServiceType),
			formatInt(st.Count),
			formatFloat(st.AverageRating),
			formatFloat(st.SatisfactionPct),
		})
	}
	rows = append(rows, []string{}, []string{"total", formatInt(data.Total)})
	return rows
}

func performanceRows(data *models.PerformanceReportData) [][]string {
	rows := [][]string{{"district", "total", "resolved", "resolution_rate", "avg_resolution_hours"}}
	for _, d := range data.Districts {
		rows = append(rows, []string{
			d.District,
			formatInt(d.Total),
			formatInt(d.Resolved),
			formatFloat(d.ResolutionRate),
			formatFloat(d.AvgResolutionHours),
		})
	}
	return rows
}

func engagementRows(data *models.EngagementReportData) [][]string {
	return [][]string{
		{"metric", "value"},
		{"discussions", formatInt(data.Discussions)},
		{"resolved_discussions", formatInt(data.ResolvedDiscussions)},
		{"comments", formatInt(data.Comments)},
		{"groups", formatInt(data.Groups)},
		{"group_memberships", formatInt(data.GroupMemberships)},
		{"announcements", formatInt(data.Announcements)},
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
