// Package syncbus propagates user-record mutations to every open tab so each
// one can repair its local cache without a server round trip. Delivery is
// best-effort and at-most-once; it never replaces server-side re-validation.
package syncbus

// Kind is the message taxonomy.
type Kind string

const (
	UserCreated Kind = "user-created"
	UserUpdated Kind = "user-updated"
	UserDeleted Kind = "user-deleted"
)

type UserRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Event struct {
	Kind Kind    `json:"kind"`
	User UserRef `json:"user"`
}

// Handler receives events. Handlers must be non-blocking and idempotent:
// duplicate or late delivery relative to a fetch response is possible.
type Handler func(Event)

// Bus is the publish/subscribe channel. Implementations may be in-process or
// server-pushed; consumers never know the difference.
type Bus interface {
	Publish(Event)
	Subscribe(Handler) (unsubscribe func())
}
