package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
)

// writeError maps domain errors onto HTTP statuses with stable machine
// codes, so clients can render precise messages per conflict kind.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, domain.ErrInvalidTimeRange):
		status, code = http.StatusBadRequest, "invalid_time_range"
	case errors.Is(err, domain.ErrInvalidCapacity):
		status, code = http.StatusBadRequest, "invalid_capacity"
	case errors.Is(err, domain.ErrNotOwner):
		status, code = http.StatusForbidden, "not_owner"
	case errors.Is(err, domain.ErrSelfBookingForbidden):
		status, code = http.StatusForbidden, "self_booking_forbidden"
	case errors.Is(err, domain.ErrSlotNotFound):
		status, code = http.StatusNotFound, "slot_not_found"
	case errors.Is(err, domain.ErrListingNotFound):
		status, code = http.StatusNotFound, "listing_not_found"
	case errors.Is(err, domain.ErrBookingNotFound):
		status, code = http.StatusNotFound, "booking_not_found"
	case errors.Is(err, domain.ErrSlotOverlap):
		status, code = http.StatusConflict, "slot_overlap"
	case errors.Is(err, domain.ErrSlotFull):
		status, code = http.StatusConflict, "slot_full"
	case errors.Is(err, domain.ErrDuplicateBooking):
		status, code = http.StatusConflict, "duplicate_booking"
	case errors.Is(err, domain.ErrOverlappingBooking):
		status, code = http.StatusConflict, "overlapping_booking"
	case errors.Is(err, domain.ErrAlreadyCancelled):
		status, code = http.StatusConflict, "already_cancelled"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message, "code": code})
}
