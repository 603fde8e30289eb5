package models

import (
	"testing"
)

func TestReservationApplyFieldsCoercesJSONNumbers(t *testing.T) {
	r := NewReservationFromFields(map[string]any{
		"id":           float64(1001),
		"listingMapId": float64(40),
		"channelId":    float64(2005),
		"status":       "new",
		"guestName":    "Jane Doe",
	})

	if r.ID != 1001 || r.ListingMapID != 40 || r.ChannelID != 2005 {
		t.Fatalf("unexpected ids: %+v", r)
	}
	if r.Status == nil || *r.Status != "new" {
		t.Fatalf("unexpected status: %v", r.Status)
	}
	if r.Source != nil {
		t.Fatalf("expected nil source")
	}
}

func TestReservationApplyFieldsPartialMerge(t *testing.T) {
	r := NewReservationFromFields(map[string]any{
		"id":           float64(1001),
		"listingMapId": float64(40),
		"channelId":    float64(2005),
		"status":       "new",
		"guestName":    "Jane Doe",
	})

	r.ApplyFields(map[string]any{"status": "modified"})

	if *r.Status != "modified" {
		t.Fatalf("expected status to change, got %v", *r.Status)
	}
	// Absent keys keep their values.
	if r.GuestName == nil || *r.GuestName != "Jane Doe" {
		t.Fatalf("expected guest name untouched, got %v", r.GuestName)
	}
}

func TestReservationFieldMapRoundTrip(t *testing.T) {
	r := NewReservationFromFields(map[string]any{
		"id":           float64(1001),
		"listingMapId": float64(40),
		"channelId":    float64(2005),
		"status":       "new",
	})

	fields := r.FieldMap()
	if fields["id"] != int64(1001) {
		t.Fatalf("unexpected id: %v", fields["id"])
	}
	if fields["status"] != "new" {
		t.Fatalf("unexpected status: %v", fields["status"])
	}
	// Unset nullable columns serialize as nil, not empty strings.
	if fields["source"] != nil {
		t.Fatalf("expected nil source, got %v", fields["source"])
	}
}

func TestConversationMessageBoolCoercion(t *testing.T) {
	m := NewConversationMessageFromFields(map[string]any{
		"id":                float64(7),
		"accountId":         float64(90),
		"conversationId":    float64(3),
		"body":              "hello",
		"communicationType": "email",
		"isIncoming":        float64(1),
	})

	if m.IsIncoming == nil || !*m.IsIncoming {
		t.Fatalf("expected isIncoming true, got %v", m.IsIncoming)
	}

	m.ApplyFields(map[string]any{"isIncoming": float64(0)})
	if m.IsIncoming == nil || *m.IsIncoming {
		t.Fatalf("expected isIncoming false, got %v", m.IsIncoming)
	}
}

func TestTaskApplyFieldsNullablePointers(t *testing.T) {
	task := NewTaskFromFields(map[string]any{
		"id":            float64(55),
		"reservationId": float64(1001),
		"title":         "Clean apartment",
		"status":        "pending",
	})

	if task.ID != 55 {
		t.Fatalf("unexpected id: %d", task.ID)
	}
	if task.ReservationID == nil || *task.ReservationID != 1001 {
		t.Fatalf("unexpected reservation id: %v", task.ReservationID)
	}
	if task.AssigneeUserID != nil {
		t.Fatalf("expected nil assignee")
	}
}
