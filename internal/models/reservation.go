package models

import "time"

// Reservation mirrors the upstream Hostaway reservation object. IDs are
// upstream-assigned; created_at/updated_at are ours.
type Reservation struct {
	ID            int64     `json:"id"`
	ListingMapID  int64     `json:"listingMapId"`
	ChannelID     int64     `json:"channelId"`
	Source        *string   `json:"source"`
	Status        *string   `json:"status"`
	GuestName     *string   `json:"guestName"`
	ArrivalDate   *string   `json:"arrivalDate"`
	DepartureDate *string   `json:"departureDate"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewReservationFromFields builds a reservation from an already filtered
// field map.
func NewReservationFromFields(fields map[string]any) *Reservation {
	r := &Reservation{}
	r.ApplyFields(fields)
	return r
}

// ApplyFields merges a field map onto the reservation. Keys absent from the
// map leave the current value untouched.
func (r *Reservation) ApplyFields(fields map[string]any) {
	for key, value := range fields {
		switch key {
		case "id":
			setInt64(&r.ID, value)
		case "listingMapId":
			setInt64(&r.ListingMapID, value)
		case "channelId":
			setInt64(&r.ChannelID, value)
		case "source":
			setStringPtr(&r.Source, value)
		case "status":
			setStringPtr(&r.Status, value)
		case "guestName":
			setStringPtr(&r.GuestName, value)
		case "arrivalDate":
			setStringPtr(&r.ArrivalDate, value)
		case "departureDate":
			setStringPtr(&r.DepartureDate, value)
		}
	}
}

// FieldMap serializes the full column set, date/time columns as ISO-8601
// strings. This is the revision snapshot payload.
func (r *Reservation) FieldMap() map[string]any {
	return map[string]any{
		"id":            r.ID,
		"listingMapId":  r.ListingMapID,
		"channelId":     r.ChannelID,
		"source":        stringValue(r.Source),
		"status":        stringValue(r.Status),
		"guestName":     stringValue(r.GuestName),
		"arrivalDate":   stringValue(r.ArrivalDate),
		"departureDate": stringValue(r.DepartureDate),
		"created_at":    r.CreatedAt.Format(time.RFC3339),
		"updated_at":    r.UpdatedAt.Format(time.RFC3339),
	}
}
