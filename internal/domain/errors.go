package domain

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserNameTaken     = errors.New("user name already registered")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoOpenSession     = errors.New("no open session")
	ErrOpenSessionExists = errors.New("open session already exists")
)
