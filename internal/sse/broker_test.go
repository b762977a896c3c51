package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestStageChangeDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishStageChange("lead-1", "New", "Contacted")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: lead.stage_changed") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"to":"Contacted"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestStageChange_BoardThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First stage change should trigger board.updated.
	b.PublishStageChange("lead-1", "New", "Contacted")
	// Second one immediately should NOT trigger another board.updated.
	b.PublishStageChange("lead-2", "New", "Offer")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	boardCount := 0
	stageCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "board.updated") {
				boardCount++
			} else {
				stageCount++
			}
		default:
			break loop
		}
	}

	if stageCount != 2 {
		t.Errorf("stage events = %d, want 2", stageCount)
	}
	if boardCount != 1 {
		t.Errorf("board events = %d, want 1 (throttled)", boardCount)
	}
}

func TestNoteChange_NoBoardEvent(t *testing.T) {
	b := NewBroker(time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishNoteChange("created", "lead-1", "note-1")
	b.PublishScheduleChange("updated", "lead-1", "sched-1")

	time.Sleep(50 * time.Millisecond)
	var events []string
loop:
	for {
		select {
		case msg := <-ch:
			events = append(events, string(msg))
		default:
			break loop
		}
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	for _, s := range events {
		if strings.Contains(s, "board.updated") {
			t.Errorf("note/schedule change triggered a board event: %q", s)
		}
	}
	if !strings.Contains(events[0], "event: note.created") {
		t.Errorf("first event = %q", events[0])
	}
	if !strings.Contains(events[1], "event: schedule.updated") {
		t.Errorf("second event = %q", events[1])
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishNoteChange("updated", "lead-1", "note-1")
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: note.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishStageChange("lead-1", "New", "Contacted")
	b.PublishBoardChange()
}
