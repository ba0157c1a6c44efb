package syncbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCache() *UserCache {
	cache := NewUserCache()
	cache.SetUsers([]UserRef{
		{ID: 3, Name: "carol"},
		{ID: 7, Name: "grace"},
		{ID: 1, Name: "alice"},
	})
	return cache
}

func TestUserCache_UsersSortedByName(t *testing.T) {
	cache := seededCache()
	users := cache.Users()
	require.Len(t, users, 3)
	assert.Equal(t, []UserRef{
		{ID: 1, Name: "alice"},
		{ID: 3, Name: "carol"},
		{ID: 7, Name: "grace"},
	}, users)
}

func TestUserCache_Apply(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		check func(t *testing.T, cache *UserCache)
	}{
		{
			name:  "created adds to the selector list",
			event: Event{Kind: UserCreated, User: UserRef{ID: 9, Name: "ivan"}},
			check: func(t *testing.T, cache *UserCache) {
				name, ok := cache.Name(9)
				require.True(t, ok)
				assert.Equal(t, "ivan", name)
			},
		},
		{
			name:  "updated patches the name",
			event: Event{Kind: UserUpdated, User: UserRef{ID: 3, Name: "caroline"}},
			check: func(t *testing.T, cache *UserCache) {
				name, ok := cache.Name(3)
				require.True(t, ok)
				assert.Equal(t, "caroline", name)
			},
		},
		{
			name:  "deleted drops the user and leaves a tombstone",
			event: Event{Kind: UserDeleted, User: UserRef{ID: 7, Name: "grace"}},
			check: func(t *testing.T, cache *UserCache) {
				assert.Len(t, cache.Users(), 2)
				name, ok := cache.Name(7)
				require.True(t, ok)
				assert.Equal(t, TombstoneLabel, name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := seededCache()
			cache.Apply(tt.event)
			tt.check(t, cache)
		})
	}
}

func TestUserCache_DeleteClearsActiveIdentity(t *testing.T) {
	cache := seededCache()
	cache.SetActive(7)

	cache.Apply(Event{Kind: UserDeleted, User: UserRef{ID: 7, Name: "grace"}})
	assert.Equal(t, uint(0), cache.Active())

	// Deleting someone else leaves the active identity alone.
	cache.SetActive(1)
	cache.Apply(Event{Kind: UserDeleted, User: UserRef{ID: 3, Name: "carol"}})
	assert.Equal(t, uint(1), cache.Active())
}

func TestUserCache_ApplyIsIdempotent(t *testing.T) {
	cache := seededCache()
	cache.SetActive(7)

	event := Event{Kind: UserDeleted, User: UserRef{ID: 7, Name: "grace"}}
	cache.Apply(event)
	cache.Apply(event) // duplicate delivery

	assert.Len(t, cache.Users(), 2)
	assert.Equal(t, uint(0), cache.Active())

	name, ok := cache.Name(7)
	require.True(t, ok)
	assert.Equal(t, TombstoneLabel, name)
}

func TestUserCache_RecreateClearsTombstone(t *testing.T) {
	cache := seededCache()
	cache.Apply(Event{Kind: UserDeleted, User: UserRef{ID: 7, Name: "grace"}})
	cache.Apply(Event{Kind: UserCreated, User: UserRef{ID: 7, Name: "grace"}})

	name, ok := cache.Name(7)
	require.True(t, ok)
	assert.Equal(t, "grace", name)
}

func TestUserCache_DeletePropagatesToEveryTab(t *testing.T) {
	bus := NewLocalBus()

	tabA := seededCache()
	tabB := seededCache()
	tabA.Attach(bus)
	tabB.Attach(bus)
	tabB.SetActive(7)

	bus.Publish(Event{Kind: UserDeleted, User: UserRef{ID: 7, Name: "grace"}})

	for _, tab := range []*UserCache{tabA, tabB} {
		assert.Len(t, tab.Users(), 2)
		name, ok := tab.Name(7)
		require.True(t, ok)
		assert.Equal(t, TombstoneLabel, name)
	}
	assert.Equal(t, uint(0), tabB.Active())
	assert.Equal(t, uint(0), tabA.Active())
}

func TestUserCache_UnknownID(t *testing.T) {
	cache := seededCache()
	_, ok := cache.Name(42)
	assert.False(t, ok)
}
