package services

import "errors"

// Failures surfaced by room sessions and the store. All of these are
// recoverable at the handler boundary and leave session state unchanged.
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrNoActiveGame   = errors.New("no active game found")
	ErrAlreadyActive  = errors.New("game already in progress")
	ErrGameNotActive  = errors.New("game is not active")
	ErrRoomClosed     = errors.New("room is no longer accepting tickets")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyJoined  = errors.New("user already has a ticket in this room")
	ErrNotAuthorized  = errors.New("not authorized")

	// ErrInvalidClaim means the claimed category is not satisfied by the
	// authoritative called set.
	ErrInvalidClaim = errors.New("win condition not met")

	// ErrDuplicateClaim means a record already exists for this
	// (room, ticket, category). Expected under normal concurrent play.
	ErrDuplicateClaim = errors.New("win already submitted")

	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)
