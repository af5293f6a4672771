package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/service/reservation"
)

type BookingHandler struct {
	service reservation.ReservationUseCase
}

type bookSlotRequest struct {
	TenantName    string `json:"tenant_name"`
	TenantContact string `json:"tenant_contact"`
}

type bookingResponse struct {
	Reference string `json:"reference"`
	SlotID    int64  `json:"slot_id"`
	ListingID int64  `json:"listing_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func NewBookingHandler(service reservation.ReservationUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(private *gin.RouterGroup) {
	private.POST("/slots/:id/bookings", h.create)
	private.DELETE("/bookings/:reference", h.cancel)
}

func (h *BookingHandler) create(c *gin.Context) {
	slotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	// Name and contact are optional, so an empty body is a valid request.
	var req bookSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.BookSlot(c.Request.Context(), reservation.BookSlotInput{
		SlotID:        slotID,
		TenantID:      callerID(c),
		TenantName:    req.TenantName,
		TenantContact: req.TenantContact,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	reference := c.Param("reference")

	booking, err := h.service.CancelBooking(c.Request.Context(), reference, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(booking))
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference: b.Reference,
		SlotID:    b.SlotID,
		ListingID: b.ListingID,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}
