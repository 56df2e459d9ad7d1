package expreplay

import "errors"

// ExpReplayError implements errors unique to an experience replay
// buffer.
type ExpReplayError struct {
	Op  string
	Err error
}

// Error satisifes the error interface
func (e *ExpReplayError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

// ErrInsufficientData is reported when a buffer is sampled before any
// data has been inserted
var ErrInsufficientData = errors.New("insufficient data: buffer empty")

// ErrInvalidTransition is reported when a transition does not match
// the feature or action size of a buffer
var ErrInvalidTransition = errors.New("invalid transition")

// ErrInvalidBatchSize is reported when a batch of fewer than one
// element is requested
var ErrInvalidBatchSize = errors.New("batch size must be >= 1")

// IsInsufficientData returns whether or not an error reports that a
// replay buffer was sampled while empty.
func IsInsufficientData(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
