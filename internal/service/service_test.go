package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"hostsync/internal/database"

	"github.com/rs/zerolog"
)

type fakeNotifier struct {
	mu     sync.Mutex
	infos  []string
	warns  []string
	errors []string
}

func (n *fakeNotifier) Inform(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, message)
}

func (n *fakeNotifier) Warn(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warns = append(n.warns, message)
}

func (n *fakeNotifier) Error(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.New(":memory:", &logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func reservationFields(id int64) map[string]any {
	return map[string]any{
		"id":           float64(id),
		"listingMapId": float64(40),
		"channelId":    float64(2005),
		"status":       "new",
		"guestName":    "Jane Doe",
	}
}

func TestReservationCreateAnnounces(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(db, notifier, &logger)

	if err := svc.Create(context.Background(), reservationFields(1001), true); err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(notifier.infos) != 1 || notifier.infos[0] != "Reservation created with ID: 1001" {
		t.Fatalf("unexpected notifications: %+v", notifier.infos)
	}
}

func TestReservationCreateDuplicateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(db, notifier, &logger)
	ctx := context.Background()

	if err := svc.Create(ctx, reservationFields(1001), true); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Webhook replays must not fail or change the record.
	if err := svc.Create(ctx, reservationFields(1001), true); err != nil {
		t.Fatalf("duplicate create must not error: %v", err)
	}

	if len(notifier.warns) != 1 || notifier.warns[0] != "Duplicate reservation creation for reservation ID: 1001" {
		t.Fatalf("unexpected warnings: %+v", notifier.warns)
	}
}

func TestReservationCreateIgnoresUnknownFields(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(db, notifier, &logger)
	ctx := context.Background()

	fields := reservationFields(1001)
	fields["someNewUpstreamField"] = "ignored"

	if err := svc.Create(ctx, fields, false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, 1001); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestReservationUpdateSnapshotsPreviousState(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(db, notifier, &logger)
	ctx := context.Background()

	if err := svc.Create(ctx, reservationFields(1001), false); err != nil {
		t.Fatalf("create: %v", err)
	}

	update := map[string]any{"id": float64(1001), "status": "modified"}
	if err := svc.Update(ctx, update, false); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := svc.Get(ctx, 1001)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status == nil || *got.Status != "modified" {
		t.Fatalf("expected modified status, got %v", got.Status)
	}
	// Fields absent from the update keep their previous values.
	if got.GuestName == nil || *got.GuestName != "Jane Doe" {
		t.Fatalf("expected guest name to survive partial update, got %v", got.GuestName)
	}

	revisions, err := db.GetReservationRevisions(ctx, 1001)
	if err != nil {
		t.Fatalf("revisions: %v", err)
	}
	if len(revisions) != 1 {
		t.Fatalf("expected 1 revision, got %d", len(revisions))
	}
	if !strings.Contains(revisions[0].Data, `"status":"new"`) {
		t.Fatalf("revision must hold the pre-update state: %s", revisions[0].Data)
	}
}

func TestReservationUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(db, notifier, &logger)

	err := svc.Update(context.Background(), map[string]any{"id": float64(404), "status": "x"}, false)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskDuplicateWarns(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewTaskService(db, notifier, &logger)
	ctx := context.Background()

	fields := map[string]any{"id": float64(55), "title": "Clean apartment", "status": "pending"}
	if err := svc.Create(ctx, fields, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Create(ctx, fields, true); err != nil {
		t.Fatalf("duplicate create must not error: %v", err)
	}
	if len(notifier.warns) != 1 || notifier.warns[0] != "Duplicate task creation for task ID: 55" {
		t.Fatalf("unexpected warnings: %+v", notifier.warns)
	}
}

func TestTaskUpdateMissing(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewTaskService(db, notifier, &logger)

	err := svc.Update(context.Background(), map[string]any{"id": float64(404), "status": "done"}, false)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMessageCreateCreatesConversation(t *testing.T) {
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	logger := zerolog.New(io.Discard)
	svc := NewMessageService(db, notifier, &logger)
	ctx := context.Background()

	fields := map[string]any{
		"id":                float64(7),
		"accountId":         float64(90),
		"conversationId":    float64(3),
		"body":              "hello",
		"communicationType": "email",
		"isIncoming":        float64(1),
	}
	if err := svc.Create(ctx, fields); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := db.GetConversation(ctx, 3); err != nil {
		t.Fatalf("expected conversation to exist: %v", err)
	}
	if _, err := db.GetConversationMessage(ctx, 7); err != nil {
		t.Fatalf("expected message to exist: %v", err)
	}
	if len(notifier.infos) != 1 || notifier.infos[0] != "ConversationMessage received with ID: 7" {
		t.Fatalf("unexpected notifications: %+v", notifier.infos)
	}

	// Replay is idempotent.
	if err := svc.Create(ctx, fields); err != nil {
		t.Fatalf("duplicate create must not error: %v", err)
	}
	if len(notifier.warns) != 1 || notifier.warns[0] != "Duplicate conversationMessage received. Duplicated ID: 7" {
		t.Fatalf("unexpected warnings: %+v", notifier.warns)
	}
}
