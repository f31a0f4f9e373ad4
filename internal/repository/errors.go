// Package repository contains the MySQL persistence layer for seller
// accounts, refresh tokens and the subscription record.  Sentinel errors
// let handlers map failure scenarios onto HTTP statuses without inspecting
// driver errors.
package repository

import "errors"

// ErrEmailExists is returned when registering with an email that already
// has an account.  Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist.  Handlers
// translate this into HTTP 404 (or 401 for credential lookups).
var ErrNotFound = errors.New("not found")
