package domain

import "errors"

// ErrSessionNotFound is returned when a session token cannot be found in the repository.
var ErrSessionNotFound = errors.New("session not found")

// ErrEmptyMessage is returned when a turn carries no message text.
var ErrEmptyMessage = errors.New("message is required")

// ErrMissingToken is returned when an operation needs a session token and none was given.
var ErrMissingToken = errors.New("session token is required")

// ErrCapabilityUnavailable wraps failures of the classifier, generator or extractor.
var ErrCapabilityUnavailable = errors.New("capability unavailable")

// ErrUnsupportedDocument is returned by extractors for formats they cannot read.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// ErrInvalidTransition is returned when a record is not a valid node of its branch graph.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidInput is returned when a message fails sanitisation (size, encoding).
var ErrInvalidInput = errors.New("invalid input")
