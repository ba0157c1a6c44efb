package auth

import "time"

// User is the credential record. PasswordHash is nil until the user sets a
// password; a password-less account is a valid steady state, not a transient
// one.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Device is one browser/installation. The identifier is minted once per
// client, survives sessions, and is independent of which user is active on
// it. The descriptor holds the last seen user agent.
type Device struct {
	DeviceID   string    `gorm:"primaryKey;column:device_id" json:"device_id"`
	Descriptor string    `json:"descriptor"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func (Device) TableName() string {
	return "devices"
}

// LoginEvent is append-only. Rows are never updated; they are deleted only by
// the bulk revocation that accompanies a password change.
type LoginEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DeviceID   string    `gorm:"index" json:"device_id"`
	UserID     uint      `gorm:"index" json:"user_id"`
	IPAddress  *string   `json:"ip_address"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

func (LoginEvent) TableName() string {
	return "device_login_logs"
}

// DeviceAccess is the per-user device listing derived from login events.
type DeviceAccess struct {
	DeviceID  string    `json:"device_id"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
