package models

import "errors"

// Error kinds surfaced to the user. None are retried automatically.
var (
	ErrInvalidPhoneFormat = errors.New("invalid phone number format")
	ErrUploadFailure      = errors.New("photo upload failed")
	ErrMemberNotFound     = errors.New("member not found")
)
