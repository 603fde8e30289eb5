package models

import "time"

// Entity kinds as named by the upstream webhook "object" field.
const (
	KindTask                = "task"
	KindReservation         = "reservation"
	KindConversationMessage = "conversationMessage"
)

// Webhook event types.
const (
	EventTaskCreated        = "task.created"
	EventTaskUpdated        = "task.updated"
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"
	EventMessageReceived    = "message.received"
)

// Revision is an immutable pre-update snapshot of an entity, one per
// mutation, ordered by creation time.
type Revision struct {
	ID        int64     `json:"id"`
	ParentID  int64     `json:"parent_id"`
	Data      string    `json:"revision_data"`
	CreatedAt time.Time `json:"created_at"`
}

// CommandRequest is the unit of work on the command queue: a slash command
// plus the form fields that came with it.
type CommandRequest struct {
	Command string            `json:"command"`
	Form    map[string]string `json:"form"`
}
