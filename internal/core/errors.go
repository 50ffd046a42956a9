package core

import "errors"

// Sentinel errors returned by the outer layers. Wrap with fmt.Errorf and %w;
// the messages are matched by MapError.
var (
	ErrViewNotFound     = errors.New("view not found")
	ErrTooManyViews     = errors.New("too many open views")
	ErrSettingsNotFound = errors.New("saved settings not found")
	ErrSchemaMismatch   = errors.New("settings do not match schema")

	ErrSourceNotFound = errors.New("source not found")
	ErrSourceExists   = errors.New("source already registered")
	ErrReadOnly       = errors.New("source is read-only")

	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidRow    = errors.New("invalid row")

	ErrFileTooLarge      = errors.New("file too large")
	ErrEmptyFile         = errors.New("empty file")
	ErrNoHeaders         = errors.New("no headers")
	ErrRowWidth          = errors.New("row width does not match headers")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoFile            = errors.New("no file provided")

	ErrBadRequest = errors.New("invalid request body")
)
