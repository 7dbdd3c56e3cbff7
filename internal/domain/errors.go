package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a game session has not been started.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrContentNotFound indicates authored content could not be loaded for a game id.
	ErrContentNotFound = errors.New("game content not found")
)
