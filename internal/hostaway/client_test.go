package hostaway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"hostsync/internal/config"
	"hostsync/internal/ratelimit"

	"github.com/rs/zerolog"
)

func newTestClient(baseURL string) *Client {
	logger := zerolog.New(io.Discard)
	cfg := config.HostawayConfig{
		BaseURL:      baseURL,
		AccessToken:  "test-token",
		MaxPageSize:  2,
		MaxRetries:   3,
		RetryBackoff: time.Millisecond,
		Timeout:      5 * time.Second,
	}
	return New(cfg, ratelimit.New(1000), &logger)
}

func reservationJSON(id int64) map[string]any {
	return map[string]any{
		"id":           id,
		"listingMapId": 40,
		"channelId":    2005,
		"status":       "new",
	}
}

func TestGetReservation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reservations/1001" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected auth header: %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": reservationJSON(1001)})
	}))
	defer server.Close()

	fields, err := newTestClient(server.URL).GetReservation(context.Background(), 1001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fields["status"] != "new" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestGetReservationRetriesThenSucceeds(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": reservationJSON(1001)})
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).GetReservation(context.Background(), 1001); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestGetReservationExhaustsRetries(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetReservation(context.Background(), 1001)
	if err == nil || !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("expected http 500 error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestGetReservationInvalidShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"id": 1001}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetReservation(context.Background(), 1001)
	if err == nil || !strings.Contains(err.Error(), "invalid reservation fetched from Hostaway API") {
		t.Fatalf("expected shape error, got %v", err)
	}
}

func TestListReservationsPaginates(t *testing.T) {
	// 5 reservations served in pages of 2: three requests, last page short.
	total := 5
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		var page []map[string]any
		for i := offset; i < total && len(page) < limit; i++ {
			page = append(page, reservationJSON(int64(i+1)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": page})
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).ListReservations(context.Background(), ReservationFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != total {
		t.Fatalf("expected %d reservations, got %d", total, len(results))
	}
	if len(requests) != 3 {
		t.Fatalf("expected 3 page requests, got %d: %v", len(requests), requests)
	}
	// Concatenation preserves upstream order.
	if got := results[4]["id"]; got != float64(5) {
		t.Fatalf("unexpected last id: %v", got)
	}
}

func TestListReservationsHonorsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		var page []map[string]any
		for i := 0; i < limit; i++ {
			page = append(page, reservationJSON(int64(i+1)))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": page})
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).ListReservations(context.Background(), ReservationFilters{Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(results))
	}
}

func TestListReservationsFilters(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, `{"result": []}`)
	}))
	defer server.Close()

	unread := true
	_, err := newTestClient(server.URL).ListReservations(context.Background(), ReservationFilters{
		ChannelID:                     2005,
		ArrivalStartDate:              "2026-09-01",
		HasUnreadConversationMessages: &unread,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	for _, want := range []string{"channelId=2005", "arrivalStartDate=2026-09-01", "hasUnreadConversationMessages=true"} {
		if !strings.Contains(query, want) {
			t.Fatalf("expected query to contain %s, got %s", want, query)
		}
	}
}
