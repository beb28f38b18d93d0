package apperror

import "errors"

var (
	ErrInvalidCell     = errors.New("invalid cell coordinates")
	ErrInvalidSnapshot = errors.New("invalid board snapshot")
	ErrSessionNotFound = errors.New("session not found")
	ErrGameFinished    = errors.New("game is already finished")
)
