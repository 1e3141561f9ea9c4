package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrAdminNotFound      = errors.New("admin not found")
)
