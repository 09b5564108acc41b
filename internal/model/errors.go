package model

import "errors"

var (
	// ErrConnectionTimeout is returned when a connection attempt exceeds the configured timeout.
	ErrConnectionTimeout = errors.New("connection attempt timed out")

	// ErrConnectionClosed is returned when the transport closed or failed underneath us.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrNotConnected is returned when an operation requires a live connection.
	ErrNotConnected = errors.New("not connected")

	// ErrParse is returned when an inbound payload does not conform to the wire schema.
	ErrParse = errors.New("malformed message")

	// ErrSend is returned when transmission of an outbound message failed.
	ErrSend = errors.New("failed to send message")

	// ErrTerminalDestroyed is returned when an operation is attempted on a destroyed terminal.
	ErrTerminalDestroyed = errors.New("terminal destroyed")

	// ErrInvalidConfig is returned when construction-time configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")
)
