package auth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elskow/reportdesk/internal/config"
)

// Service is the identity resolver. It drives the per-user password state
// machine (NO_PASSWORD <-> HAS_PASSWORD) and the device-log side effects of a
// successful login.
type Service struct {
	config  *config.AuthConfig
	log     *zap.Logger
	users   Repository
	devices DeviceRepository
	tx      TxManager
}

// AuthResult is the outcome of a successful authentication. FirstLogin is
// true iff the account transitioned out of NO_PASSWORD during this call.
type AuthResult struct {
	User       *User
	FirstLogin bool
	DeviceID   string
}

func NewService(config *config.AuthConfig, log *zap.Logger, users Repository, devices DeviceRepository, tx TxManager) *Service {
	return &Service{
		config:  config,
		log:     log,
		users:   users,
		devices: devices,
		tx:      tx,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *Service) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Check is the existence/password-presence probe. No side effects.
func (s *Service) Check(name string) (exists bool, hasPassword bool, err error) {
	user, err := s.users.FindByName(strings.TrimSpace(name))
	if err != nil {
		if err == ErrUserNotFound {
			return false, false, nil
		}
		return false, false, err
	}
	return true, user.HasPassword(), nil
}

// Authenticate resolves a user by name and runs the login state machine.
func (s *Service) Authenticate(name, password, deviceID, descriptor string, ip *string) (*AuthResult, error) {
	user, err := s.users.FindByName(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.login(user, password, deviceID, descriptor, ip)
}

// AuthenticateByID is the same entry point keyed by id.
func (s *Service) AuthenticateByID(id uint, password, deviceID, descriptor string, ip *string) (*AuthResult, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	return s.login(user, password, deviceID, descriptor, ip)
}

func (s *Service) login(user *User, password, deviceID, descriptor string, ip *string) (*AuthResult, error) {
	firstLogin := false

	if !user.HasPassword() {
		// First login. A non-empty password is adopted as the account
		// password; an empty one leaves the account password-less.
		if password != "" {
			hash, err := s.HashPassword(password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			if err := s.users.SetPassword(user.ID, &hash); err != nil {
				return nil, fmt.Errorf("store password: %w", err)
			}
			user.PasswordHash = &hash
			firstLogin = true
		}
	} else if !s.CheckPasswordHash(password, *user.PasswordHash) {
		// Failed attempts mutate nothing: no device row, no login event.
		return nil, ErrInvalidPassword
	}

	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	// The upsert must succeed for the login to count. A failed log append is
	// tolerated but surfaced; the append is idempotent-safe to retry.
	if err := s.devices.UpsertDevice(deviceID, descriptor); err != nil {
		return nil, fmt.Errorf("upsert device: %w", err)
	}
	if err := s.devices.LogLogin(deviceID, user.ID, ip); err != nil {
		s.log.Error("failed to append login event",
			zap.String("device_id", deviceID),
			zap.Uint("user_id", user.ID),
			zap.Error(err))
	}

	return &AuthResult{User: user, FirstLogin: firstLogin, DeviceID: deviceID}, nil
}

// ChangePassword verifies the old password, stores the new hash (or clears it
// when new is empty) and revokes every session of the user in one
// transaction.
func (s *Service) ChangePassword(id uint, oldPassword, newPassword string) error {
	user, err := s.users.FindByID(id)
	if err != nil {
		return err
	}

	if user.HasPassword() {
		if oldPassword == "" || !s.CheckPasswordHash(oldPassword, *user.PasswordHash) {
			return ErrInvalidPassword
		}
	}

	var hash *string
	if newPassword != "" {
		if len(newPassword) < s.config.MinPasswordLength {
			return ErrPasswordTooShort
		}
		h, err := s.HashPassword(newPassword)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}

	return s.tx.Do(func(users Repository, devices DeviceRepository) error {
		if err := users.SetPassword(id, hash); err != nil {
			return err
		}
		return devices.RevokeAllForUser(id)
	})
}

// Resolve re-validates an identity against the credential store. Cookies are
// never trusted on their own.
func (s *Service) Resolve(id uint) (*User, error) {
	return s.users.FindByID(id)
}

// LogDevice is the explicit device/log touch for flows that claim an identity
// without a password check.
func (s *Service) LogDevice(deviceID string, userID uint, descriptor string, ip *string) error {
	if _, err := s.users.FindByID(userID); err != nil {
		return err
	}
	if err := s.devices.UpsertDevice(deviceID, descriptor); err != nil {
		return fmt.Errorf("upsert device: %w", err)
	}
	if err := s.devices.LogLogin(deviceID, userID, ip); err != nil {
		return fmt.Errorf("append login event: %w", err)
	}
	return nil
}

func (s *Service) ListDevices(userID uint) ([]DeviceAccess, error) {
	if _, err := s.users.FindByID(userID); err != nil {
		return nil, err
	}
	return s.devices.ListForUser(userID)
}

func (s *Service) RevokeDevice(deviceID string) error {
	return s.devices.Revoke(deviceID)
}

// HasActiveSession is the middleware probe behind cookie re-validation.
func (s *Service) HasActiveSession(deviceID string, userID uint) (bool, error) {
	return s.devices.HasActiveSession(deviceID, userID)
}
