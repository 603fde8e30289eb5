package models

import "time"

// Task mirrors the upstream Hostaway task object.
type Task struct {
	ID             int64     `json:"id"`
	ListingMapID   *int64    `json:"listingMapId"`
	ChannelID      *int64    `json:"channelId"`
	ReservationID  *int64    `json:"reservationId"`
	AutoTaskID     *int64    `json:"autoTaskId"`
	AssigneeUserID *int64    `json:"assigneeUserId"`
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	Status         *string   `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewTaskFromFields(fields map[string]any) *Task {
	t := &Task{}
	t.ApplyFields(fields)
	return t
}

func (t *Task) ApplyFields(fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "id":
			setInt64(&t.ID, value)
		case "listingMapId":
			setInt64Ptr(&t.ListingMapID, value)
		case "channelId":
			setInt64Ptr(&t.ChannelID, value)
		case "reservationId":
			setInt64Ptr(&t.ReservationID, value)
		case "autoTaskId":
			setInt64Ptr(&t.AutoTaskID, value)
		case "assigneeUserId":
			setInt64Ptr(&t.AssigneeUserID, value)
		case "title":
			setStringPtr(&t.Title, value)
		case "description":
			setStringPtr(&t.Description, value)
		case "status":
			setStringPtr(&t.Status, value)
		}
	}
}

func (t *Task) FieldMap() map[string]any {
	return map[string]any{
		"id":             t.ID,
		"listingMapId":   int64Value(t.ListingMapID),
		"channelId":      int64Value(t.ChannelID),
		"reservationId":  int64Value(t.ReservationID),
		"autoTaskId":     int64Value(t.AutoTaskID),
		"assigneeUserId": int64Value(t.AssigneeUserID),
		"title":          stringValue(t.Title),
		"description":    stringValue(t.Description),
		"status":         stringValue(t.Status),
		"created_at":     t.CreatedAt.Format(time.RFC3339),
		"updated_at":     t.UpdatedAt.Format(time.RFC3339),
	}
}
