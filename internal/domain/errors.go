package domain

import "errors"

var (
	ErrRoomRequired   = errors.New("room is required")
	ErrSignalRequired = errors.New("signal payload is required")
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrMessageTooLong = errors.New("message too long")
)
