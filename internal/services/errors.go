package services

import "errors"

var (
	// ErrSessionNotFound means the session id does not resolve; no point
	// processing happens.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotJoined means an event arrived for a (session,user) pair with no
	// prior join. Hard failure for events, silent no-op for leave.
	ErrNotJoined = errors.New("user has not joined this session")
	// ErrUserNotFound means the progression target user does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownEventKind means the reported kind is outside the closed event
	// set or not reportable by callers.
	ErrUnknownEventKind = errors.New("unknown event kind")
)
