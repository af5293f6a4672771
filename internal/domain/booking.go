package domain

import "time"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking is a tenant's reservation against a slot. Reference is the public
// identifier used by the API; ListingID is denormalized from the slot for
// query convenience. ReminderSent is a side-channel flag owned by the
// reminder sweep, not part of the status state machine.
type Booking struct {
	ID            int64         `json:"-"`
	Reference     string        `json:"reference"`
	SlotID        int64         `json:"slot_id"`
	ListingID     int64         `json:"listing_id"`
	TenantID      int64         `json:"tenant_id"`
	TenantName    string        `json:"tenant_name,omitempty"`
	TenantContact string        `json:"tenant_contact,omitempty"`
	Status        BookingStatus `json:"status"`
	ReminderSent  bool          `json:"reminder_sent"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SlotInterval is a tenant booking's slot time range, used for the
// cross-slot overlap check during booking.
type SlotInterval struct {
	SlotID int64
	Start  time.Time
	End    time.Time
}

// ReminderItem is a due reminder: an active, not-yet-notified booking
// together with its slot's interval and the tenant contact to notify.
type ReminderItem struct {
	BookingID     int64
	Reference     string
	ListingID     int64
	TenantID      int64
	TenantName    string
	TenantContact string
	SlotStart     time.Time
	SlotEnd       time.Time
}
