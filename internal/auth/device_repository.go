package auth

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceRepository is the device registry: the device table plus the
// append-only login log it is derived from.
type DeviceRepository interface {
	// UpsertDevice is idempotent and commutative under concurrent calls for
	// the same device. An update touches only descriptor and last_seen_at.
	UpsertDevice(deviceID, descriptor string) error

	// LogLogin appends; duplicates are expected and all retained.
	LogLogin(deviceID string, userID uint, ip *string) error

	ListForUser(userID uint) ([]DeviceAccess, error)

	// HasActiveSession reports whether cookies naming this device/user pair
	// may still authenticate: the device row must survive and at least one
	// login event must remain.
	HasActiveSession(deviceID string, userID uint) (bool, error)

	// Revoke is the single-device logout. It drops the device row only;
	// login events stay for the audit view.
	Revoke(deviceID string) error

	// RevokeAllForUser is the bulk path behind a password change. It deletes
	// the user's login events so previously issued sessions can no longer
	// re-validate. Callers must run it in the same transaction as the hash
	// update.
	RevokeAllForUser(userID uint) error
}

type deviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepository(db *gorm.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

func (r *deviceRepository) UpsertDevice(deviceID, descriptor string) error {
	device := &Device{
		DeviceID:   deviceID,
		Descriptor: descriptor,
		LastSeenAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"descriptor", "last_seen_at"}),
	}).Create(device).Error
}

func (r *deviceRepository) LogLogin(deviceID string, userID uint, ip *string) error {
	event := &LoginEvent{
		DeviceID:   deviceID,
		UserID:     userID,
		IPAddress:  ip,
		LoggedInAt: time.Now(),
	}
	return r.db.Create(event).Error
}

func (r *deviceRepository) ListForUser(userID uint) ([]DeviceAccess, error) {
	var access []DeviceAccess
	err := r.db.Model(&LoginEvent{}).
		Select("device_id, MIN(logged_in_at) AS first_seen, MAX(logged_in_at) AS last_seen").
		Where("user_id = ?", userID).
		Group("device_id").
		Order("last_seen DESC").
		Scan(&access).Error
	if err != nil {
		return nil, err
	}
	return access, nil
}

func (r *deviceRepository) HasActiveSession(deviceID string, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&LoginEvent{}).
		Joins("JOIN devices ON devices.device_id = device_login_logs.device_id").
		Where("device_login_logs.device_id = ? AND device_login_logs.user_id = ?", deviceID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *deviceRepository) Revoke(deviceID string) error {
	return r.db.Delete(&Device{}, "device_id = ?", deviceID).Error
}

func (r *deviceRepository) RevokeAllForUser(userID uint) error {
	return r.db.Delete(&LoginEvent{}, "user_id = ?", userID).Error
}
