// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors: ErrNotFound maps to an HTTP
// 404, ErrInvalidRange to a 400.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist, e.g.
// a ticket number with no rows or a line-item id that was never created.
var ErrNotFound = errors.New("not found")

// ErrInvalidRange is returned by ListTicketNumbers when the end of the
// requested date range precedes its start.
var ErrInvalidRange = errors.New("invalid date range")

// ErrEmptyTicket is returned by SaveTicket when the batch contains no
// line items.  A ticket number is never allocated for an empty batch.
var ErrEmptyTicket = errors.New("ticket has no items")
