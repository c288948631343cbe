package feed

import (
	"testing"
	"time"

	"github.com/starsign-web/starsign/internal/submissions"
	"github.com/starsign-web/starsign/internal/zodiac"
)

func testSubmission(id string) submissions.Submission {
	return submissions.New(
		id,
		"Test User",
		time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
		zodiac.Taurus,
		time.Date(2026, time.August, 23, 10, 0, 0, 0, time.UTC),
	)
}

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub()
	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	if hub.Count() != 2 {
		t.Fatalf("count = %d, want 2", hub.Count())
	}
	if dropped := hub.Publish(testSubmission("a")); dropped != 0 {
		t.Fatalf("dropped = %d, want 0", dropped)
	}

	for _, ch := range []<-chan submissions.Submission{ch1, ch2} {
		select {
		case sub := <-ch:
			if sub.ID != "a" {
				t.Fatalf("sub.ID = %q, want %q", sub.ID, "a")
			}
		default:
			t.Fatal("expected buffered event")
		}
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()
	cancel() // second cancel must be a no-op

	if hub.Count() != 0 {
		t.Fatalf("count = %d, want 0", hub.Count())
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}
	if dropped := hub.Publish(testSubmission("a")); dropped != 0 {
		t.Fatalf("dropped = %d, want 0 with no subscribers", dropped)
	}
}

func TestHubDropsWhenSubscriberLags(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		if dropped := hub.Publish(testSubmission("fill")); dropped != 0 {
			t.Fatalf("publish %d dropped = %d, want 0", i, dropped)
		}
	}
	if dropped := hub.Publish(testSubmission("overflow")); dropped != 1 {
		t.Fatalf("dropped = %d, want 1 once buffer is full", dropped)
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered = %d, want %d", len(ch), subscriberBuffer)
	}
}
