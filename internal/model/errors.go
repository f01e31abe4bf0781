package model

import "errors"

var (
	// ErrEmptyCode rejects blank scan input before any network call.
	ErrEmptyCode = errors.New("code is empty")
	// ErrResolveInFlight rejects a resolve started while one is pending.
	ErrResolveInFlight = errors.New("scan resolution already in flight")

	ErrOrderNotFound      = errors.New("order not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrBackendUnreachable = errors.New("cannot connect to server")

	// ErrNoCodes means verify was attempted before codes were generated.
	ErrNoCodes         = errors.New("verification codes not generated")
	ErrCodeExpired     = errors.New("verification code expired")
	ErrAlreadyVerified = errors.New("delivery already verified")

	ErrTokenExpired = errors.New("auth token expired")
	// ErrSessionBound rejects binding a token over an existing one.
	ErrSessionBound = errors.New("session already bound to a token")
	ErrUnknownEvent = errors.New("unknown realtime event")
)
