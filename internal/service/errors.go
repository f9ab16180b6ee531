package service

import (
	"errors"

	"github.com/m3rciful/tictactoe-bot/internal/storage"
)

var (
	// ErrInvalidInput rejects callback tokens that are neither a claim nor a cell.
	ErrInvalidInput = errors.New("service: invalid input")
	// ErrGameNotFound is returned when no game is stored under the requested id.
	ErrGameNotFound = storage.ErrNotFound
)
