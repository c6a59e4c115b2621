// Package notifier publishes domain events to real-time rooms over Redis
// pub/sub. Events leave the request path through a transactional outbox and
// are dispatched asynchronously with at-least-once semantics.
package notifier

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ijwi/citizen-server/internal/models"
)

// Room names follow the role/id convention clients subscribe under.
const (
	RoomSectorAdmins   = "sector-admins"
	RoomDistrictAdmins = "district-admins"
	RoomSuperAdmins    = "super-admins"
)

// Event types pushed to connected clients.
const (
	EventNewComplaint       = "newComplaint"
	EventComplaintEscalated = "complaintEscalated"
	EventComplaintResolved  = "complaintResolved"
	EventNewDiscussion      = "newDiscussion"
	EventNewComment         = "newComment"
	EventDiscussionResolved = "discussionResolved"
	EventNewAnnouncement    = "newAnnouncement"
	EventNewMessage         = "newMessage"
)

func UserRoom(id uuid.UUID) string        { return "user-" + id.String() }
func SectorRoom(sector string) string     { return "sector-" + sector }
func DistrictRoom(district string) string { return "district-" + district }
func GroupRoom(id uuid.UUID) string       { return "group-" + id.String() }
func DiscussionRoom(id uuid.UUID) string  { return "discussion-" + id.String() }

// NewEvent builds an outbox row for a room. The payload is marshaled up
// front so a bad payload fails the request, not the dispatcher.
func NewEvent(room, eventType string, payload any) (models.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		ID:        uuid.New(),
		Room:      room,
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// RoomsFor derives the rooms a connected user listens on: their own user
// room plus the role/jurisdiction rooms their account covers.
func RoomsFor(user *models.User) []string {
	rooms := []string{UserRoom(user.ID)}
	switch user.Role {
	case models.RoleSectorAdmin:
		rooms = append(rooms, RoomSectorAdmins, SectorRoom(user.Location.Sector))
	case models.RoleDistrictAdmin:
		rooms = append(rooms, RoomDistrictAdmins, DistrictRoom(user.Location.District))
	case models.RoleSuperAdmin:
		rooms = append(rooms, RoomSuperAdmins)
	default:
		rooms = append(rooms, SectorRoom(user.Location.Sector), DistrictRoom(user.Location.District))
	}
	return rooms
}
