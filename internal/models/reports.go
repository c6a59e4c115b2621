package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReportType tags the shape of a report snapshot's data.
type ReportType string

const (
	ReportComplaints  ReportType = "complaints"
	ReportFeedback    ReportType = "feedback"
	ReportEngagement  ReportType = "engagement"
	ReportPerformance ReportType = "performance"
)

// ReportFilters records the scope a report was generated under.
type ReportFilters struct {
	TimeRange       string    `json:"time_range,omitempty"`
	Location        *Location `json:"location,omitempty"`
	Status          string    `json:"status,omitempty"`
	EscalationLevel *int      `json:"escalation_level,omitempty"`
}

// Report is a persisted snapshot of an aggregation result. Data holds exactly
// one of the *ReportData variants, selected by Type and validated before
// persistence.
type Report struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Type        ReportType      `json:"type" db:"type"`
	GeneratedBy uuid.UUID       `json:"generated_by" db:"generated_by"`
	Filters     ReportFilters   `json:"filters" db:"filters"`
	Data        json.RawMessage `json:"data" db:"data"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// StatusCount is one bucket of a group-by-status aggregation.
type StatusCount struct {
	Status ComplaintStatus `json:"status"`
	Count  int64           `json:"count"`
}

// ComplaintReportData is the data variant for ReportComplaints. Rates are
// percentages in [0, 100].
type ComplaintReportData struct {
	Total              int64         `json:"total"`
	ByStatus           []StatusCount `json:"by_status"`
	Escalated          int64         `json:"escalated"`
	Resolved           int64         `json:"resolved"`
	ResolutionRate     float64       `json:"resolution_rate"`
	EscalationRate     float64       `json:"escalation_rate"`
	AvgResolutionHours float64       `json:"avg_resolution_hours"`
}

// ServiceTypeStats is one service's feedback aggregate.
type ServiceTypeStats struct {
	ServiceType     ServiceType `json:"service_type"`
	Count           int64       `json:"count"`
	AverageRating   float64     `json:"average_rating"`
	SatisfactionPct float64     `json:"satisfaction_pct"`
}

// FeedbackReportData is the data variant for ReportFeedback.
type FeedbackReportData struct {
	Total     int64              `json:"total"`
	ByService []ServiceTypeStats `json:"by_service"`
}

// DistrictPerformance is one district's complaint-handling aggregate.
type DistrictPerformance struct {
	District           string  `json:"district"`
	Total              int64   `json:"total"`
	Resolved           int64   `json:"resolved"`
	ResolutionRate     float64 `json:"resolution_rate"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// PerformanceReportData is the data variant for ReportPerformance.
type PerformanceReportData struct {
	Districts []DistrictPerformance `json:"districts"`
}

// EngagementReportData is the data variant for ReportEngagement.
type EngagementReportData struct {
	Discussions         int64 `json:"discussions"`
	ResolvedDiscussions int64 `json:"resolved_discussions"`
	Comments            int64 `json:"comments"`
	Groups              int64 `json:"groups"`
	GroupMemberships    int64 `json:"group_memberships"`
	Announcements       int64 `json:"announcements"`
}

// ValidReportType reports whether s names a known report type.
func ValidReportType(s string) bool {
	switch ReportType(s) {
	case ReportComplaints, ReportFeedback, ReportEngagement, ReportPerformance:
		return true
	default:
		return false
	}
}

// EncodeReportData marshals a typed variant after checking it matches the
// report type. Free-form payloads are rejected at this boundary.
func EncodeReportData(t ReportType, data any) (json.RawMessage, error) {
	ok := false
	switch data.(type) {
	case *ComplaintReportData, ComplaintReportData:
		ok = t == ReportComplaints
	case *FeedbackReportData, FeedbackReportData:
		ok = t == ReportFeedback
	case *PerformanceReportData, PerformanceReportData:
		ok = t == ReportPerformance
	case *EngagementReportData, EngagementReportData:
		ok = t == ReportEngagement
	}
	if !ok {
		return nil, fmt.Errorf("report data %T does not match type %q", data, t)
	}
	return json.Marshal(data)
}
