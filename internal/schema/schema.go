// Package schema declares the column descriptors the pipeline validates and
// filters webhook payloads against. The descriptor is the allow-list: unknown
// fields are dropped, missing required fields reject before persistence.
package schema

import (
	"fmt"

	"hostsync/internal/models"
)

type FieldType string

const (
	TypeInt      FieldType = "int"
	TypeString   FieldType = "string"
	TypeBool     FieldType = "bool"
	TypeDate     FieldType = "date"
	TypeDateTime FieldType = "datetime"
)

type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	// ServerAssigned columns are set by the storage layer, never expected on
	// an inbound payload and excluded from reconciliation diffs.
	ServerAssigned bool
}

type Descriptor struct {
	Kind   string
	Fields []Field
}

var descriptors = map[string]*Descriptor{
	models.KindReservation: {
		Kind: models.KindReservation,
		Fields: []Field{
			{Name: "id", Type: TypeInt},
			{Name: "listingMapId", Type: TypeInt},
			{Name: "channelId", Type: TypeInt},
			{Name: "source", Type: TypeString, Nullable: true},
			{Name: "status", Type: TypeString, Nullable: true},
			{Name: "guestName", Type: TypeString, Nullable: true},
			{Name: "arrivalDate", Type: TypeDate, Nullable: true},
			{Name: "departureDate", Type: TypeDate, Nullable: true},
			{Name: "created_at", Type: TypeDateTime, ServerAssigned: true},
			{Name: "updated_at", Type: TypeDateTime, ServerAssigned: true},
		},
	},
	models.KindTask: {
		Kind: models.KindTask,
		Fields: []Field{
			{Name: "id", Type: TypeInt},
			{Name: "listingMapId", Type: TypeInt, Nullable: true},
			{Name: "channelId", Type: TypeInt, Nullable: true},
			{Name: "reservationId", Type: TypeInt, Nullable: true},
			{Name: "autoTaskId", Type: TypeInt, Nullable: true},
			{Name: "assigneeUserId", Type: TypeInt, Nullable: true},
			{Name: "title", Type: TypeString, Nullable: true},
			{Name: "description", Type: TypeString, Nullable: true},
			{Name: "status", Type: TypeString, Nullable: true},
			{Name: "created_at", Type: TypeDateTime, ServerAssigned: true},
			{Name: "updated_at", Type: TypeDateTime, ServerAssigned: true},
		},
	},
	models.KindConversationMessage: {
		Kind: models.KindConversationMessage,
		Fields: []Field{
			{Name: "id", Type: TypeInt},
			{Name: "accountId", Type: TypeInt},
			{Name: "reservationId", Type: TypeInt, Nullable: true},
			{Name: "conversationId", Type: TypeInt},
			{Name: "body", Type: TypeString},
			{Name: "communicationType", Type: TypeString},
			{Name: "status", Type: TypeString, Nullable: true},
			{Name: "isIncoming", Type: TypeBool, Nullable: true},
			{Name: "date", Type: TypeDateTime, Nullable: true},
			{Name: "insertedOn", Type: TypeDateTime, ServerAssigned: true},
			{Name: "updatedOn", Type: TypeDateTime, ServerAssigned: true},
		},
	},
}

// ForKind returns the descriptor for an entity kind.
func ForKind(kind string) (*Descriptor, bool) {
	d, ok := descriptors[kind]
	return d, ok
}

// Validate checks required fields and runtime types of present fields.
// Server-assigned timestamp columns are exempt from the required check.
// Boolean fields accept the upstream 0/1 integer encoding.
func (d *Descriptor) Validate(data map[string]any) error {
	for _, field := range d.Fields {
		value, present := data[field.Name]

		if !present {
			if !field.Nullable && !field.ServerAssigned {
				return fmt.Errorf("missing required field: %s", field.Name)
			}
			continue
		}

		if value == nil {
			continue
		}

		switch field.Type {
		case TypeInt:
			if !isInt(value) {
				return typeError(d.Kind, field, "int", value)
			}
		case TypeString:
			if _, ok := value.(string); !ok {
				return typeError(d.Kind, field, "string", value)
			}
		case TypeBool:
			if !isBool(value) {
				return typeError(d.Kind, field, "bool", value)
			}
		}
	}
	return nil
}

// Filter returns a copy of data restricted to known columns.
func (d *Descriptor) Filter(data map[string]any) map[string]any {
	filtered := make(map[string]any, len(data))
	for _, field := range d.Fields {
		if value, ok := data[field.Name]; ok {
			filtered[field.Name] = value
		}
	}
	return filtered
}

// DiffFields lists columns that take part in reconciliation diffs, i.e.
// everything except the server-assigned timestamps.
func (d *Descriptor) DiffFields() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		if field.ServerAssigned {
			continue
		}
		names = append(names, field.Name)
	}
	return names
}

func typeError(kind string, field Field, want string, value any) error {
	return fmt.Errorf("incorrect type for %s field %s: expected %s, got %T", kind, field.Name, want, value)
}

func isInt(v any) bool {
	switch n := v.(type) {
	case int, int64:
		return true
	case float64:
		return n == float64(int64(n))
	}
	return false
}

func isBool(v any) bool {
	switch n := v.(type) {
	case bool:
		return true
	case float64:
		return n == 0 || n == 1
	case int:
		return n == 0 || n == 1
	case int64:
		return n == 0 || n == 1
	}
	return false
}
