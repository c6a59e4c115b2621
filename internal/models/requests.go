package models

import "github.com/google/uuid"

// RegisterRequest is the body for POST /api/auth/register. Public
// registration always produces citizens; requesting an elevated role is
// rejected at the service layer.
type RegisterRequest struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     string   `json:"role,omitempty"`
	Location Location `json:"assigned_location" validate:"required"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateRoleRequest is the body for PATCH /api/users/{id}/role.
type UpdateRoleRequest struct {
	Role     string    `json:"role" validate:"required"`
	Location *Location `json:"assigned_location,omitempty"`
}

// ComplaintSubmission is the body for POST /api/complaints.
type ComplaintSubmission struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Location    Location `json:"location" validate:"required"`
}

// DiscussionSubmission is the body for POST /api/discussions.
type DiscussionSubmission struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=40"`
}

// CommentSubmission is the body for POST /api/discussions/{id}/comments.
type CommentSubmission struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// GroupSubmission is the body for POST /api/groups.
type GroupSubmission struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// AnnouncementSubmission is the body for POST /api/groups/{id}/announcements.
type AnnouncementSubmission struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// FeedbackSubmission is the body for POST /api/feedback.
type FeedbackSubmission struct {
	ServiceType string `json:"service_type" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Comments    string `json:"comments" validate:"max=2000"`
}

// MessageSubmission is the body for POST /api/messages.
type MessageSubmission struct {
	ReceiverID uuid.UUID `json:"receiver_id" validate:"required"`
	Message    string    `json:"message" validate:"required,max=5000"`
}

// DiscussionFilter narrows role-scoped discussion listings.
type DiscussionFilter struct {
	OwnerID  *uuid.UUID
	District string
	Sector   string
	Status   string
	Tag      string
}
