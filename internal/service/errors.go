package service

import "errors"

var (
	ErrValidation          = errors.New("validation")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrAlreadyLiked        = errors.New("dish already liked")
)
