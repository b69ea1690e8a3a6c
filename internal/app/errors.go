package app

import (
	"errors"

	"github.com/rallyhq/rally/internal/domain"
)

// Expected operation failures. Every coordinator operation reports these
// as values; nothing in the core panics on malformed client input.
var (
	ErrMissingRoom     = errors.New("room name required")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrRoomFull        = errors.New("room is full")
	ErrBlocked         = errors.New("address is blocked in this room")
	ErrWrongPassword   = errors.New("wrong password")
	ErrNotJoined       = errors.New("not in a room")
	ErrNoSession       = errors.New("unknown session")
	ErrBadAddress      = errors.New("invalid ip address")
	ErrNotBlocked      = errors.New("address is not blocked")
	ErrUnauthenticated = errors.New("missing or invalid admin token")
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindState
)

// Kind classifies an operation error for transport-level reporting.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrMissingRoom),
		errors.Is(err, ErrBadAddress),
		errors.Is(err, domain.ErrRoomNameEmpty),
		errors.Is(err, domain.ErrRoomNameTooLong),
		errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrIconTooLarge):
		return KindValidation
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrNotBlocked):
		return KindNotFound
	case errors.Is(err, ErrRoomExists), errors.Is(err, ErrRoomFull):
		return KindConflict
	case errors.Is(err, ErrWrongPassword), errors.Is(err, ErrBlocked), errors.Is(err, ErrUnauthenticated):
		return KindAuth
	case errors.Is(err, ErrNotJoined), errors.Is(err, ErrNoSession):
		return KindState
	}
	return KindUnknown
}
