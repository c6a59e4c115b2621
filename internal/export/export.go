// Package export renders report snapshots as downloadable CSV or PDF files.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/ijwi/citizen-server/internal/models"
)

// Result is a rendered file ready to be written to a response.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

// ErrPDFDependencyMissing indicates the headless browser used for PDF
// rendering is not installed on this host.
var ErrPDFDependencyMissing = errors.New("export pdf dependency missing")

// CSV renders a report snapshot as CSV.
func CSV(report *models.Report) (*Result, error) {
	data, err := renderCSV(report)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: filename(report, "csv"),
		MimeType: "text/csv",
	}, nil
}

// PDF renders a report snapshot as PDF via headless Chrome.
func PDF(report *models.Report) (*Result, error) {
	html, err := renderHTML(report)
	if err != nil {
		return nil, err
	}
	data, err := htmlToPDF(html)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: filename(report, "pdf"),
		MimeType: "application/pdf",
	}, nil
}

func filename(report *models.Report, ext string) string {
	return fmt.Sprintf("%s-report-%s.%s", report.Type, report.CreatedAt.Format("2006-01-02"), ext)
}

func reportTitle(t models.ReportType) string {
	switch t {
	case models.ReportComplaints:
		return "Complaint Handling Report"
	case models.ReportFeedback:
		return "Service Feedback Report"
	case models.ReportPerformance:
		return "District Performance Report"
	case models.ReportEngagement:
		return "Community Engagement Report"
	default:
		return "Report"
	}
}

func scopeLabel(f models.ReportFilters) string {
	if f.Location == nil {
		return "All locations"
	}
	if f.Location.Sector != "" {
		return fmt.Sprintf("%s / %s", f.Location.District, f.Location.Sector)
	}
	return f.Location.District
}

func formatTimestamp(t time.Time) string {
	return t.Format("2 Jan 2006 15:04")
}
