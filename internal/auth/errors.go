package auth

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrNameRequired     = errors.New("name is required")
	ErrNameTaken        = errors.New("user with this name already exists")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password is too short")
)
