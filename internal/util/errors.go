package util

import "errors"

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrSessionExpired    = errors.New("session expired")
	ErrUnknownRole       = errors.New("Unknown role")
	ErrNoFile            = errors.New("no file selected")
	ErrFileTooLarge      = errors.New("file exceeds the 10MB upload limit")
	ErrInvalidStatus     = errors.New("invalid submission status")
	ErrInvalidPassword   = errors.New("give a password or ask for a generated one")
	ErrStorageNotEnabled = errors.New("archive storage is not configured")
)
