// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema, one table per entity.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the position of a user in the admin hierarchy.
type Role string

const (
	RoleCitizen       Role = "citizen"
	RoleSectorAdmin   Role = "sector_admin"
	RoleDistrictAdmin Role = "district_admin"
	RoleSuperAdmin    Role = "super_admin"
)

// Location is the province/district/sector jurisdiction attached to users,
// complaints, discussions, groups and feedback.
type Location struct {
	Province string `json:"province" validate:"required"`
	District string `json:"district" validate:"required"`
	Sector   string `json:"sector" validate:"required"`
}

// User is an account with a role and an assigned jurisdiction.
// The password hash is never serialized.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Location     Location  `json:"assigned_location"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ComplaintStatus enumerates complaint states. InProgress is declared in the
// schema but no operation transitions a complaint into it.
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in_progress"
	ComplaintEscalated  ComplaintStatus = "escalated"
	ComplaintResolved   ComplaintStatus = "resolved"
)

// Complaint is a citizen-reported issue routed through the admin hierarchy.
// Escalation level 0 means the assigned sector admin owns it; level 1 means
// a district admin has taken over. Level 2 is reserved.
type Complaint struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Description     string          `json:"description" db:"description"`
	Status          ComplaintStatus `json:"status" db:"status"`
	EscalationLevel int             `json:"escalation_level" db:"escalation_level"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	SectorAdminID   *uuid.UUID      `json:"sector_admin_id,omitempty" db:"sector_admin_id"`
	DistrictAdminID *uuid.UUID      `json:"district_admin_id,omitempty" db:"district_admin_id"`
	Location        Location        `json:"location"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

// DiscussionStatus is open or resolved; there is no un-resolve.
type DiscussionStatus string

const (
	DiscussionOpen     DiscussionStatus = "open"
	DiscussionResolved DiscussionStatus = "resolved"
)

// Discussion is a citizen-started public thread, admin-moderated.
type Discussion struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	CreatedBy   uuid.UUID        `json:"created_by" db:"created_by"`
	Location    Location         `json:"location"`
	Tags        []string         `json:"tags" db:"tags"`
	Status      DiscussionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ResolvedAt  *time.Time       `json:"resolved_at,omitempty" db:"resolved_at"`
	Comments    []Comment        `json:"comments,omitempty"`
}

// Comment is an append-only reply on a discussion. IsOfficialResponse is true
// only when the author holds an admin role.
type Comment struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	DiscussionID       uuid.UUID `json:"discussion_id" db:"discussion_id"`
	UserID             uuid.UUID `json:"user_id" db:"user_id"`
	Text               string    `json:"text" db:"text"`
	IsOfficialResponse bool      `json:"is_official_response" db:"is_official_response"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// Group is a jurisdiction-scoped community/announcement channel.
// The creator is always a member and can never leave.
type Group struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Location    Location  `json:"location"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	MemberCount int       `json:"member_count,omitempty"`
}

// GroupMember records one user's membership in a group.
type GroupMember struct {
	GroupID  uuid.UUID `json:"group_id" db:"group_id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Announcement is an append-only broadcast posted by the group creator.
type Announcement struct {
	ID        uuid.UUID `json:"id" db:"id"`
	GroupID   uuid.UUID `json:"group_id" db:"group_id"`
	Message   string    `json:"message" db:"message"`
	PostedBy  uuid.UUID `json:"posted_by" db:"posted_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ServiceType enumerates the public services feedback can target.
type ServiceType string

const (
	ServiceHealth         ServiceType = "health"
	ServiceEducation      ServiceType = "education"
	ServiceInfrastructure ServiceType = "infrastructure"
	ServiceSanitation     ServiceType = "sanitation"
	ServiceSecurity       ServiceType = "security"
	ServiceAdministration ServiceType = "administration"
)

// Feedback is an immutable rating-based service review.
type Feedback struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	ServiceType ServiceType `json:"service_type" db:"service_type"`
	Rating      int         `json:"rating" db:"rating"`
	Comments    string      `json:"comments,omitempty" db:"comments"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	Location    Location    `json:"location"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// MessageStatus tracks direct-message delivery.
type MessageStatus string

const (
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageRead      MessageStatus = "read"
)

// Message is a direct message between two users.
type Message struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	SenderID   uuid.UUID     `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID     `json:"receiver_id" db:"receiver_id"`
	Body       string        `json:"message" db:"body"`
	Status     MessageStatus `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	ReadAt     *time.Time    `json:"read_at,omitempty" db:"read_at"`
}

// Event is a transactional outbox row. It is written in the same transaction
// as the state change it describes and published to its room asynchronously
// with at-least-once semantics.
type Event struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Room         string          `json:"room" db:"room"`
	Type         string          `json:"type" db:"type"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	DispatchedAt *time.Time      `json:"dispatched_at,omitempty" db:"dispatched_at"`
}

// HealthStatus is the payload returned by the health probes.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime,omitempty"`
	Database string `json:"database,omitempty"`
	Redis    string `json:"redis,omitempty"`
}

// IsAdmin reports whether the role sits anywhere in the admin hierarchy.
func (r Role) IsAdmin() bool {
	return r == RoleSectorAdmin || r == RoleDistrictAdmin || r == RoleSuperAdmin
}

// Rank orders roles from citizen (0) to super admin (3). Role and location
// mutations require a strictly higher-ranked actor.
func (r Role) Rank() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleDistrictAdmin:
		return 2
	case RoleSectorAdmin:
		return 1
	default:
		return 0
	}
}

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCitizen, RoleSectorAdmin, RoleDistrictAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// ValidServiceType reports whether s names a known service type.
func ValidServiceType(s string) bool {
	switch ServiceType(s) {
	case ServiceHealth, ServiceEducation, ServiceInfrastructure,
		ServiceSanitation, ServiceSecurity, ServiceAdministration:
		return true
	default:
		return false
	}
}
