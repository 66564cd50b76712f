package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("editing session not found or expired")
	ErrSessionForbidden = errors.New("editing session belongs to another user")
)
