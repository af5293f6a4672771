package domain

import "errors"

var (
	ErrSlotNotFound    = errors.New("slot not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrListingNotFound = errors.New("listing not found")

	ErrInvalidTimeRange = errors.New("slot start must be before end")
	ErrInvalidCapacity  = errors.New("slot capacity must be at least 1")

	ErrNotOwner = errors.New("caller does not own this resource")

	ErrSlotOverlap          = errors.New("slot overlaps an existing slot on this listing")
	ErrSelfBookingForbidden = errors.New("landlord cannot book their own slot")
	ErrSlotFull             = errors.New("slot capacity exhausted")
	ErrDuplicateBooking     = errors.New("tenant already holds an active booking for this slot")
	ErrOverlappingBooking   = errors.New("tenant holds an active booking overlapping this slot")
	ErrAlreadyCancelled     = errors.New("booking is already cancelled")
)
