// Package tts holds the speech synthesis adapters.
package tts

import "errors"

var (
	// ErrMissingAPIKey is returned when a synthesizer has no credentials
	ErrMissingAPIKey = errors.New("api key is required")
	// ErrEmptyText is returned when there is nothing to speak
	ErrEmptyText = errors.New("text cannot be empty")
)

const contentTypeMPEG = "audio/mpeg"
