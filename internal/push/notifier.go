package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukerupert/tidyroom/internal/engine"
	"github.com/dukerupert/tidyroom/internal/model"
	"github.com/dukerupert/tidyroom/internal/store"
)

// Notifier turns engine events into web push notifications. Completions
// wanting review go to the family's parents; verdicts go back to the child's
// own profile, when the child has one.
type Notifier struct {
	service  *Service
	subs     *store.PushStore
	children *store.ChildStore
	logger   *slog.Logger
}

func NewNotifier(service *Service, subs *store.PushStore, children *store.ChildStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service:  service,
		subs:     subs,
		children: children,
		logger:   logger.With("component", "push"),
	}
}

// Notify implements the engine sink. Delivery happens off the caller's
// goroutine; a verify response never waits on a push service.
func (n *Notifier) Notify(ev engine.Event) {
	payload, toParents, ok := n.payloadFor(ev)
	if !ok {
		return
	}
	go n.deliver(ev, payload, toParents)
}

func (n *Notifier) payloadFor(ev engine.Event) (Payload, bool, bool) {
	title, _ := ev.Extra["title"].(string)

	switch ev.Type {
	case "task_completed":
		return Payload{
			Title: "Ready for review",
			Body:  fmt.Sprintf("%q is waiting for a check", title),
			URL:   "/review",
			Tag:   "task-" + ev.ChildID,
		}, true, true
	case "task_verified":
		body := fmt.Sprintf("%q approved", title)
		if awarded, ok := ev.Extra["awarded"].(int); ok {
			body = fmt.Sprintf("%q approved: +%d points", title, awarded)
		}
		return Payload{
			Title: "Nice work!",
			Body:  body,
			URL:   "/room",
			Tag:   "task-" + ev.ChildID,
		}, false, true
	case "task_rejected":
		return Payload{
			Title: "One more try",
			Body:  fmt.Sprintf("%q was sent back", title),
			URL:   "/tasks",
			Tag:   "task-" + ev.ChildID,
		}, false, true
	case "level_up":
		levelTitle, _ := ev.Extra["title"].(string)
		return Payload{
			Title: "Level up!",
			Body:  fmt.Sprintf("You are now a %s", levelTitle),
			URL:   "/room",
			Tag:   "level-" + ev.ChildID,
		}, false, true
	default:
		return Payload{}, false, false
	}
}

func (n *Notifier) deliver(ev engine.Event, payload Payload, toParents bool) {
	subs, err := n.subscriptions(ev, toParents)
	if err != nil {
		n.logger.Error("list subscriptions", "event", ev.Type, "error", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		if err := n.service.Send(sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := n.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
					n.logger.Error("prune expired subscription", "error", err)
				}
				continue
			}
			n.logger.Error("send push", "event", ev.Type, "error", err)
		}
	}
}

func (n *Notifier) subscriptions(ev engine.Event, toParents bool) ([]model.PushSubscription, error) {
	if toParents {
		return n.subs.ListForFamilyParents(ev.FamilyID)
	}

	child, err := n.children.GetByID(ev.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.ProfileID == nil {
		return nil, nil
	}
	return n.subs.ListByProfile(*child.ProfileID)
}
