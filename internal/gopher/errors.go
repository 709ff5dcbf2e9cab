package gopher

import "errors"

// Error taxonomy surfaced to the command router. Callers classify with
// errors.Is and turn each class into a short user-facing reply.
var (
	ErrInvalidURL       = errors.New("invalid gopher URL")
	ErrConnect          = errors.New("connection failed")
	ErrTimeout          = errors.New("request timed out")
	ErrProtocol         = errors.New("unparseable gopher response")
	ErrInvalidOperation = errors.New("invalid operation")
)
