// Package validator checks inbound payloads before they reach the
// persistence layer: webhook envelopes against the entity schemas and slash
// command input against basic sanity rules.
package validator

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"

	"hostsync/internal/models"
	"hostsync/internal/schema"
)

// validEvents whitelists event types per object kind.
var validEvents = map[string][]string{
	models.KindTask:                {models.EventTaskCreated, models.EventTaskUpdated},
	models.KindConversationMessage: {models.EventMessageReceived},
	models.KindReservation:         {models.EventReservationCreated, models.EventReservationUpdated},
}

var channelIDPattern = regexp.MustCompile(`^\S{1,256}$`)

// Event is a validated webhook envelope.
type Event struct {
	AccountID string
	Object    string
	EventType string
	ID        int64
	Data      map[string]any
}

// ValidateWebhook runs the envelope checks in order, short-circuiting on the
// first failure: shape, account identity, event whitelist, then field-level
// schema conformance.
func ValidateWebhook(payload map[string]any, accountID string) (*Event, error) {
	if len(payload) == 0 {
		return nil, errors.New("invalid data format")
	}

	object, ok := payload["object"].(string)
	if !ok {
		return nil, errors.New("invalid data format")
	}
	eventType, ok := payload["event"].(string)
	if !ok {
		return nil, errors.New("invalid data format")
	}
	account, ok := payload["accountId"]
	if !ok {
		return nil, errors.New("invalid data format")
	}
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, errors.New("invalid data format")
	}
	rawID, ok := data["id"]
	if !ok {
		return nil, errors.New("invalid data format")
	}

	// A mismatched account is a hard reject: accepting it would leak another
	// tenant's data into this deployment.
	if accountString(account) != accountID {
		return nil, errors.New("invalid account ID")
	}

	events, ok := validEvents[object]
	if !ok {
		return nil, fmt.Errorf("invalid object type: %s", object)
	}
	if !contains(events, eventType) {
		return nil, fmt.Errorf("invalid event for %s: %s", object, eventType)
	}

	descriptor, _ := schema.ForKind(object)
	if err := descriptor.Validate(data); err != nil {
		return nil, err
	}

	id, ok := asInt64(rawID)
	if !ok {
		return nil, fmt.Errorf("incorrect type for %s field id: expected int, got %T", object, rawID)
	}

	return &Event{
		AccountID: accountString(account),
		Object:    object,
		EventType: eventType,
		ID:        id,
		Data:      data,
	}, nil
}

// ValidateCommandInput validates and sanitizes slash-command form input,
// returning the sanitized user text.
func ValidateCommandInput(form map[string]string) (string, error) {
	userText := form["text"]
	channelID := form["channel_id"]

	if userText == "" {
		return "", errors.New("empty user input, please provide a valid input")
	}
	if channelID == "" || !channelIDPattern.MatchString(channelID) {
		return "", errors.New("invalid channel ID")
	}

	sanitized := html.EscapeString(userText)
	if len(sanitized) > 200 {
		return "", errors.New("input text is too long, limit to 200 characters")
	}

	return sanitized, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// accountString renders the webhook account id the way the configured value
// is written: integral numbers in plain base-10. JSON decoding hands numeric
// ids over as float64, which fmt.Sprint would put into scientific notation
// past seven digits.
func accountString(v any) string {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
