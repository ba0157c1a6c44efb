package auth

import "gorm.io/gorm"

// TxManager runs a function against transaction-scoped repositories. The
// password rotation + bulk revocation pair must commit or roll back as one
// unit; a half-applied state is a correctness violation.
type TxManager interface {
	Do(fn func(users Repository, devices DeviceRepository) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(fn func(users Repository, devices DeviceRepository) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx), NewDeviceRepository(tx))
	})
}
