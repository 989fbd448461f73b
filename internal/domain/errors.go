package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("password is not valid")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrAccountBlocked     = errors.New("account is blocked")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrInvalidInput       = errors.New("invalid input")
)
