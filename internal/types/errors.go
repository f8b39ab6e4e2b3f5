package types

import "errors"

var (
	// ErrInsufficientHistory means the latest bar has no defined indicator readings.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrDataUnavailable is returned by collaborators that could not produce data.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrInvalidSeries covers unordered or duplicate timestamps, malformed bars and misaligned indicator series.
	ErrInvalidSeries    = errors.New("invalid series")
	ErrUnparsableRecord = errors.New("unparsable record")
)
