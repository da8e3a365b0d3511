package services

import "errors"

// ErrNotFound maps a missing row to an HTTP 404-equivalent at the handler.
var ErrNotFound = errors.New("record not found")

// ErrNoParent is returned when a contact, address or note would be created
// without any owning entity.
var ErrNoParent = errors.New("at least one parent entity is required")

// PerPage is the fixed page size for every list view.
const PerPage = 25
