package auth

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory credential store and device registry sharing
// one mutex, so the transactional rotate+revoke pair stays atomic. It backs
// the tests here and in the packages that consume the store.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  uint
	nextLog uint
	users   map[uint]*User
	devices map[string]*Device
	logins  []*LoginEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		nextLog: 1,
		users:   make(map[uint]*User),
		devices: make(map[string]*Device),
	}
}

func (m *MemoryStore) FindByName(name string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Name == name {
			return cloneUser(user), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MemoryStore) FindByID(id uint) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (m *MemoryStore) List() ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *cloneUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

func (m *MemoryStore) Create(name string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Name == name {
			return nil, ErrNameTaken
		}
	}

	now := time.Now()
	user := &User{ID: m.nextID, Name: name, CreatedAt: now, UpdatedAt: now}
	m.nextID++
	m.users[user.ID] = user
	return cloneUser(user), nil
}

func (m *MemoryStore) Rename(id uint, name string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	for _, other := range m.users {
		if other.ID != id && other.Name == name {
			return nil, ErrNameTaken
		}
	}

	user.Name = name
	user.UpdatedAt = time.Now()
	return cloneUser(user), nil
}

func (m *MemoryStore) SetPassword(id uint, hash *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setPasswordLocked(id, hash)
}

func (m *MemoryStore) setPasswordLocked(id uint, hash *string) error {
	user, exists := m.users[id]
	if !exists {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) Delete(id uint) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	delete(m.users, id)
	return cloneUser(user), nil
}

func (m *MemoryStore) UpsertDevice(deviceID, descriptor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if device, exists := m.devices[deviceID]; exists {
		device.Descriptor = descriptor
		device.LastSeenAt = time.Now()
		return nil
	}
	m.devices[deviceID] = &Device{
		DeviceID:   deviceID,
		Descriptor: descriptor,
		LastSeenAt: time.Now(),
	}
	return nil
}

func (m *MemoryStore) LogLogin(deviceID string, userID uint, ip *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logLoginLocked(deviceID, userID, ip)
	return nil
}

func (m *MemoryStore) logLoginLocked(deviceID string, userID uint, ip *string) {
	m.logins = append(m.logins, &LoginEvent{
		ID:         m.nextLog,
		DeviceID:   deviceID,
		UserID:     userID,
		IPAddress:  ip,
		LoggedInAt: time.Now(),
	})
	m.nextLog++
}

func (m *MemoryStore) ListForUser(userID uint) ([]DeviceAccess, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byDevice := make(map[string]*DeviceAccess)
	for _, event := range m.logins {
		if event.UserID != userID {
			continue
		}
		access, exists := byDevice[event.DeviceID]
		if !exists {
			byDevice[event.DeviceID] = &DeviceAccess{
				DeviceID:  event.DeviceID,
				FirstSeen: event.LoggedInAt,
				LastSeen:  event.LoggedInAt,
			}
			continue
		}
		if event.LoggedInAt.Before(access.FirstSeen) {
			access.FirstSeen = event.LoggedInAt
		}
		if event.LoggedInAt.After(access.LastSeen) {
			access.LastSeen = event.LoggedInAt
		}
	}

	result := make([]DeviceAccess, 0, len(byDevice))
	for _, access := range byDevice {
		result = append(result, *access)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LastSeen.After(result[j].LastSeen) })
	return result, nil
}

func (m *MemoryStore) HasActiveSession(deviceID string, userID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, exists := m.devices[deviceID]; !exists {
		return false, nil
	}
	for _, event := range m.logins {
		if event.DeviceID == deviceID && event.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) Revoke(deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.devices, deviceID)
	return nil
}

func (m *MemoryStore) RevokeAllForUser(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revokeAllForUserLocked(userID)
	return nil
}

func (m *MemoryStore) revokeAllForUserLocked(userID uint) {
	kept := m.logins[:0]
	for _, event := range m.logins {
		if event.UserID != userID {
			kept = append(kept, event)
		}
	}
	m.logins = kept
}

// Do satisfies TxManager. The store is already a single synchronized unit.
func (m *MemoryStore) Do(fn func(users Repository, devices DeviceRepository) error) error {
	return fn(m, m)
}

func cloneUser(user *User) *User {
	clone := *user
	if user.PasswordHash != nil {
		hash := *user.PasswordHash
		clone.PasswordHash = &hash
	}
	return &clone
}
