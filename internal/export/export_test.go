package export

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ijwi/citizen-server/internal/models"
)

func snapshotFor(t *testing.T, typ models.ReportType, data any) *models.Report {
	t.Helper()
	raw, err := models.EncodeReportData(typ, data)
	require.NoError(t, err)
	return &models.Report{
		ID:          uuid.New(),
		Type:        typ,
		GeneratedBy: uuid.New(),
		Filters: models.ReportFilters{
			Location: &models.Location{Province: "Kigali", District: "Gasabo", Sector: "Remera"},
		},
		Data:      raw,
		CreatedAt: time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestCSVComplaintReport(t *testing.T) {
	report := snapshotFor(t, models.ReportComplaints, &models.ComplaintReportData{
		Total: 40,
		ByStatus: []models.StatusCount{
			{Status: models.ComplaintPending, Count: 10},
			{Status: models.ComplaintResolved, Count: 30},
		},
		Escalated:          5,
		Resolved:           30,
		ResolutionRate:     75,
		EscalationRate:     12.5,
		AvgResolutionHours: 48.25,
	})

	result, err := CSV(report)
	require.NoError(t, err)
	require.Equal(t, "text/csv", result.MimeType)
	require.Equal(t, "complaints-report-2026-03-15.csv", result.Filename)

	out := string(result.Data)
	require.Contains(t, out, "Complaint Handling Report")
	require.Contains(t, out, "Gasabo / Remera")
	require.Contains(t, out, "total,40")
	require.Contains(t, out, "resolution_rate,75.00")
	require.Contains(t, out, "avg_resolution_hours,48.25")
	require.Contains(t, out, "pending,10")
	require.Contains(t, out, "resolved,30")
}

func TestCSVFeedbackReport(t *testing.T) {
	report := snapshotFor(t, models.ReportFeedback, &models.FeedbackReportData{
		Total: 12,
		ByService: []models.ServiceTypeStats{
			{ServiceType: models.ServiceHealth, Count: 8, AverageRating: 4.5, SatisfactionPct: 87.5},
			{ServiceType: models.ServiceSanitation, Count: 4, AverageRating: 2.25, SatisfactionPct: 25},
		},
	})

	result, err := CSV(report)
	require.NoError(t, err)

	out := string(result.Data)
	require.Contains(t, out, "service_type,count,average_rating,satisfaction_pct")
	require.Contains(t, out, "health,8,4.50,87.50")
	require.Contains(t, out, "sanitation,4,2.25,25.00")
	require.Contains(t, out, "total,12")
}

func TestCSVEngagementReport(t *testing.T) {
	report := snapshotFor(t, models.ReportEngagement, &models.EngagementReportData{
		Discussions:         7,
		ResolvedDiscussions: 3,
		Comments:            21,
		Groups:              2,
		GroupMemberships:    15,
		Announcements:       4,
	})

	result, err := CSV(report)
	require.NoError(t, err)

	out := string(result.Data)
	require.Contains(t, out, "discussions,7")
	require.Contains(t, out, "group_memberships,15")
}

func TestCSVRejectsMismatchedData(t *testing.T) {
	report := snapshotFor(t, models.ReportPerformance, &models.PerformanceReportData{})
	report.Type = "bogus"

	_, err := CSV(report)
	require.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	report := snapshotFor(t, models.ReportPerformance, &models.PerformanceReportData{
		Districts: []models.DistrictPerformance{
			{District: "Gasabo", Total: 20, Resolved: 15, ResolutionRate: 75, AvgResolutionHours: 36},
			{District: "Kicukiro", Total: 10, Resolved: 2, ResolutionRate: 20, AvgResolutionHours: 90.5},
		},
	})

	html, err := renderHTML(report)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	require.Contains(t, html, "District Performance Report")
	require.Contains(t, html, "<td>Gasabo</td>")
	require.Contains(t, html, "<td>Kicukiro</td>")
	require.Contains(t, html, "90.50")
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123", "abc-123"},
		{"a b", "a%20b"},
		{"<p>", "%3Cp%3E"},
		{"50%", "50%25"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, percentEncodeForDataURL(tt.in), "input %q", tt.in)
	}
}
