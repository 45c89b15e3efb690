package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/tidyroom/internal/engine"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, familyID string) *Client {
	return &Client{
		hub:      hub,
		conn:     nil,
		familyID: familyID,
		send:     make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := mockClient(hub, "fam-1")
	c2 := mockClient(hub, "fam-1")

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(slog.Default())
	c := mockClient(hub, "fam-1")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestPublishScopedToFamily(t *testing.T) {
	hub := NewHub(slog.Default())

	mine := mockClient(hub, "fam-1")
	sibling := mockClient(hub, "fam-1")
	neighbor := mockClient(hub, "fam-2")
	hub.Register(mine)
	hub.Register(sibling)
	hub.Register(neighbor)

	ev := engine.Event{
		Type:     "task_verified",
		FamilyID: "fam-1",
		ChildID:  "child-1",
		Extra:    map[string]any{"awarded": float64(63)},
	}
	hub.Publish(ev)

	for _, c := range []*Client{mine, sibling} {
		select {
		case data := <-c.send:
			var got engine.Event
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "task_verified" {
				t.Errorf("type = %q, want task_verified", got.Type)
			}
			if got.ChildID != "child-1" {
				t.Errorf("child_id = %q, want child-1", got.ChildID)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case <-neighbor.send:
		t.Fatal("another family's client received the event")
	default:
	}

	hub.Unregister(mine)
	hub.Unregister(sibling)
	hub.Unregister(neighbor)
}

func TestPublishEmptyHub(t *testing.T) {
	hub := NewHub(slog.Default())
	// Should not panic
	hub.Publish(engine.Event{Type: "task_completed", FamilyID: "fam-1"})
}

func TestPublishFullBuffer(t *testing.T) {
	hub := NewHub(slog.Default())

	c := mockClient(hub, "fam-1")
	hub.Register(c)

	// Fill the send buffer
	for i := 0; i < sendBufferSize; i++ {
		hub.Publish(engine.Event{Type: "room_decayed", FamilyID: "fam-1"})
	}

	// This should drop the message, not panic or block
	hub.Publish(engine.Event{Type: "room_decayed", FamilyID: "fam-1"})

	// Drain to verify buffer was full
	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(slog.Default())
	var wg sync.WaitGroup

	// Spawn goroutines that register, publish, and unregister concurrently
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "fam-1")
			hub.Register(c)
			hub.Publish(engine.Event{Type: "task_verified", FamilyID: "fam-1"})
			// Drain any messages
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}
