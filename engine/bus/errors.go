package bus

import (
	"errors"
	"fmt"
)

var (
	ErrNilHandler         = errors.New("bus: nil handler")
	ErrDuplicateResponder = errors.New("bus: pull channel already has a responder")
	ErrWrongChannelKind   = errors.New("bus: wrong channel kind")
	ErrNoResponder        = errors.New("bus: no responder registered")
	ErrPayloadType        = errors.New("bus: unexpected payload type")
)

// ConfigurationError reports a component that was wired incorrectly: a missing
// collaborator at construction or an invalid subscription. It is not recoverable.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProtocolError reports a notification that could not be delivered or decoded.
// Source is the name given by the subscriber involved, empty when there was none.
type ProtocolError struct {
	Source  string
	Channel Channel
	Err     error
}

func (e *ProtocolError) Error() string {
	src := e.Source
	if src == "" {
		src = "<none>"
	}
	return fmt.Sprintf("%v: subscription source %q, channel %s", e.Err, src, e.Channel)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
