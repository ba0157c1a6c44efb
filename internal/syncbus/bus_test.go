package syncbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalBus_FanOut(t *testing.T) {
	bus := NewLocalBus()

	var first, second []Event
	bus.Subscribe(func(e Event) { first = append(first, e) })
	bus.Subscribe(func(e Event) { second = append(second, e) })

	event := Event{Kind: UserCreated, User: UserRef{ID: 1, Name: "alice"}}
	bus.Publish(event)

	assert.Equal(t, []Event{event}, first)
	assert.Equal(t, []Event{event}, second)
}

func TestLocalBus_Unsubscribe(t *testing.T) {
	bus := NewLocalBus()

	var received []Event
	unsubscribe := bus.Subscribe(func(e Event) { received = append(received, e) })

	bus.Publish(Event{Kind: UserCreated, User: UserRef{ID: 1, Name: "alice"}})
	unsubscribe()
	bus.Publish(Event{Kind: UserDeleted, User: UserRef{ID: 1, Name: "alice"}})

	assert.Len(t, received, 1)
	assert.Equal(t, UserCreated, received[0].Kind)
}

func TestLocalBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewLocalBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Kind: UserUpdated, User: UserRef{ID: 3, Name: "carol"}})
	})
}
