package domain

import "time"

// Slot is a landlord-defined, capacity-bounded move-in window on a listing.
// The time range is immutable after creation; changing it means deleting the
// slot and creating a new one.
type Slot struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listing_id"`
	LandlordID int64     `json:"landlord_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Capacity   int       `json:"capacity"`
	CreatedAt  time.Time `json:"created_at"`
}

// SlotView is the public listing view of a slot: the slot itself plus how
// many active bookings it currently carries. Tenant identities are never
// part of this view.
type SlotView struct {
	Slot        Slot `json:"slot"`
	BookedCount int  `json:"booked_count"`
	Remaining   int  `json:"remaining"`
}
