package syncbus

import (
	"sort"
	"sync"
)

// TombstoneLabel replaces the name of a deleted user in historical views.
const TombstoneLabel = "deleted user"

// UserCache is the tab-local state a bus subscriber keeps: the selector list
// plus the identity the tab is currently acting as. Apply is idempotent, so
// duplicate or late delivery cannot corrupt it.
type UserCache struct {
	mu         sync.Mutex
	users      map[uint]string
	tombstones map[uint]struct{}
	activeID   uint
}

func NewUserCache() *UserCache {
	return &UserCache{
		users:      make(map[uint]string),
		tombstones: make(map[uint]struct{}),
	}
}

// Attach subscribes the cache to a bus and returns the unsubscribe func for
// teardown.
func (c *UserCache) Attach(bus Bus) func() {
	return bus.Subscribe(c.Apply)
}

func (c *UserCache) SetUsers(users []UserRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.users = make(map[uint]string, len(users))
	for _, u := range users {
		c.users[u.ID] = u.Name
	}
}

func (c *UserCache) SetActive(id uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeID = id
}

// Active returns the current identity, 0 when none.
func (c *UserCache) Active() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Users returns the selector list ordered by name.
func (c *UserCache) Users() []UserRef {
	c.mu.Lock()
	defer c.mu.Unlock()

	users := make([]UserRef, 0, len(c.users))
	for id, name := range c.users {
		users = append(users, UserRef{ID: id, Name: name})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// Name resolves an id for display, substituting the tombstone label for users
// deleted while this tab was open.
func (c *UserCache) Name(id uint) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, exists := c.users[id]; exists {
		return name, true
	}
	if _, deleted := c.tombstones[id]; deleted {
		return TombstoneLabel, true
	}
	return "", false
}

// Apply patches the cache from a bus event.
func (c *UserCache) Apply(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Kind {
	case UserCreated, UserUpdated:
		c.users[event.User.ID] = event.User.Name
		delete(c.tombstones, event.User.ID)
	case UserDeleted:
		delete(c.users, event.User.ID)
		c.tombstones[event.User.ID] = struct{}{}
		if c.activeID == event.User.ID {
			// Force re-selection: the identity this tab was acting as is gone.
			c.activeID = 0
		}
	}
}
