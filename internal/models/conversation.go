package models

import "time"

// Conversation groups messages for a reservation. It may be created ahead of
// the reservation it references when a message arrives first.
type Conversation struct {
	ID            int64     `json:"id"`
	ReservationID *int64    `json:"reservationId"`
	CreatedAt     time.Time `json:"created_at"`
}

// ConversationMessage belongs to exactly one conversation and optionally
// references a reservation.
type ConversationMessage struct {
	ID                int64     `json:"id"`
	AccountID         int64     `json:"accountId"`
	ReservationID     *int64    `json:"reservationId"`
	ConversationID    int64     `json:"conversationId"`
	Body              string    `json:"body"`
	CommunicationType string    `json:"communicationType"`
	Status            *string   `json:"status"`
	IsIncoming        *bool     `json:"isIncoming"`
	Date              *string   `json:"date"`
	InsertedOn        time.Time `json:"insertedOn"`
	UpdatedOn         time.Time `json:"updatedOn"`
}

func NewConversationMessageFromFields(fields map[string]any) *ConversationMessage {
	m := &ConversationMessage{}
	m.ApplyFields(fields)
	return m
}

func (m *ConversationMessage) ApplyFields(fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "id":
			setInt64(&m.ID, value)
		case "accountId":
			setInt64(&m.AccountID, value)
		case "reservationId":
			setInt64Ptr(&m.ReservationID, value)
		case "conversationId":
			setInt64(&m.ConversationID, value)
		case "body":
			setString(&m.Body, value)
		case "communicationType":
			setString(&m.CommunicationType, value)
		case "status":
			setStringPtr(&m.Status, value)
		case "isIncoming":
			setBoolPtr(&m.IsIncoming, value)
		case "date":
			setStringPtr(&m.Date, value)
		}
	}
}

func (m *ConversationMessage) FieldMap() map[string]any {
	return map[string]any{
		"id":                m.ID,
		"accountId":         m.AccountID,
		"reservationId":     int64Value(m.ReservationID),
		"conversationId":    m.ConversationID,
		"body":              m.Body,
		"communicationType": m.CommunicationType,
		"status":            stringValue(m.Status),
		"isIncoming":        boolValue(m.IsIncoming),
		"date":              stringValue(m.Date),
		"insertedOn":        m.InsertedOn.Format(time.RFC3339),
		"updatedOn":         m.UpdatedOn.Format(time.RFC3339),
	}
}
