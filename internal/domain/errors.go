package domain

import "errors"

var (
	// ErrRemoteUnavailable marks a network/transport failure. Always
	// non-fatal: callers fall back to cached data or skip persistence.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrNotAuthenticated marks an operation that needs an owner when none
	// is signed in. Components downgrade to local-only behaviour.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSyncFailed signals that a catalog refresh failed and the previous
	// snapshot was served instead.
	ErrSyncFailed = errors.New("catalog sync failed")
	// ErrCacheMiss is returned by LocalCache.Get for an absent key.
	ErrCacheMiss = errors.New("cache miss")
	// ErrValidation marks malformed input. Fatal to the single operation,
	// never corrupts cached state.
	ErrValidation = errors.New("validation failed")

	ErrAppNotFound     = errors.New("app not found")
	ErrLogNotFound     = errors.New("usage log not found")
	ErrLogClosed       = errors.New("usage log already closed")
	ErrSessionNotFound = errors.New("focus session not found")
	ErrSessionFinished = errors.New("focus session already finished")
	ErrNoActiveSession = errors.New("no active focus session")
	ErrSessionRunning  = errors.New("a focus session is already running")
)
