package push

import (
	"log/slog"
	"testing"

	"github.com/dukerupert/tidyroom/internal/engine"
)

func testNotifier() *Notifier {
	return NewNotifier(NewService("pub", "priv"), nil, nil, slog.Default())
}

func TestPayloadForCompletionGoesToParents(t *testing.T) {
	n := testNotifier()

	payload, toParents, ok := n.payloadFor(engine.Event{
		Type:     "task_completed",
		FamilyID: "fam-1",
		ChildID:  "child-1",
		Extra:    map[string]any{"title": "Make the bed"},
	})
	if !ok {
		t.Fatal("expected a payload for task_completed")
	}
	if !toParents {
		t.Error("completion should notify parents")
	}
	if payload.Title != "Ready for review" {
		t.Errorf("title = %q", payload.Title)
	}
}

func TestPayloadForVerdictGoesToChild(t *testing.T) {
	n := testNotifier()

	for _, typ := range []string{"task_verified", "task_rejected", "level_up"} {
		_, toParents, ok := n.payloadFor(engine.Event{Type: typ, ChildID: "child-1", Extra: map[string]any{}})
		if !ok {
			t.Errorf("%s: expected a payload", typ)
		}
		if toParents {
			t.Errorf("%s: should notify the child, not parents", typ)
		}
	}
}

func TestPayloadForIgnoredEvents(t *testing.T) {
	n := testNotifier()

	for _, typ := range []string{"room_decayed", "points_adjusted", "item_purchased", "achievement_earned"} {
		if _, _, ok := n.payloadFor(engine.Event{Type: typ}); ok {
			t.Errorf("%s: expected no push", typ)
		}
	}
}

func TestPayloadForAwardInBody(t *testing.T) {
	n := testNotifier()

	payload, _, ok := n.payloadFor(engine.Event{
		Type:  "task_verified",
		Extra: map[string]any{"title": "Make the bed", "awarded": 63},
	})
	if !ok {
		t.Fatal("expected a payload")
	}
	if payload.Body != `"Make the bed" approved: +63 points` {
		t.Errorf("body = %q", payload.Body)
	}
}
