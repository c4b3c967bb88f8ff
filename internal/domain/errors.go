package domain

import "errors"

var (
	ErrUsernameEmpty    = errors.New("username empty")
	ErrUsernameTaken    = errors.New("username taken")
	ErrNotRegistered    = errors.New("user not registered")
	ErrNoActiveSession  = errors.New("no active session")
	ErrMessageTooLong   = errors.New("message too long")
	ErrAssetUnavailable = errors.New("static asset unavailable")
)
