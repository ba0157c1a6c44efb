package auth

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Repository is the credential store. It owns the user row and nothing else;
// device cascades are orchestrated by the service, never here.
type Repository interface {
	FindByName(name string) (*User, error)
	FindByID(id uint) (*User, error)
	List() ([]User, error)
	Create(name string) (*User, error)
	Rename(id uint, name string) (*User, error)
	SetPassword(id uint, hash *string) error
	Delete(id uint) (*User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByName(name string) (*User, error) {
	var user User
	if err := r.db.Where("name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByID(id uint) (*User, error) {
	var user User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) List() ([]User, error) {
	var users []User
	if err := r.db.Order("name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) Create(name string) (*User, error) {
	user := &User{Name: name}
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, err
	}
	return user, nil
}

func (r *repository) Rename(id uint, name string) (*User, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Model(user).Updates(map[string]interface{}{
		"name":       name,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, err
	}

	user.Name = name
	return user, nil
}

func (r *repository) SetPassword(id uint, hash *string) error {
	result := r.db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash": hash,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) Delete(id uint) (*User, error) {
	user, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(&User{}, id).Error; err != nil {
		return nil, err
	}
	return user, nil
}
