package usecase

import "errors"

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("resource not found")
	ErrRoundNotOpen   = errors.New("round is not open")
	ErrRoundNotLocked = errors.New("round is not locked")
	ErrAlreadySettled = errors.New("round already settled")
)
