package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/service/slots"
)

type SlotHandler struct {
	service slots.SlotUseCase
}

// Capacity carries no binding tag: zero must reach the service so it can
// answer with its own capacity error rather than a generic binding failure.
type createSlotRequest struct {
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Capacity int       `json:"capacity"`
}

func NewSlotHandler(service slots.SlotUseCase) *SlotHandler {
	return &SlotHandler{service: service}
}

// Register wires slot routes. Listing the public slot view needs no
// identity; every mutation and the landlord booking view do.
func (h *SlotHandler) Register(public, private *gin.RouterGroup) {
	public.GET("/listings/:listing_id/slots", h.list)
	private.POST("/listings/:listing_id/slots", h.create)
	private.DELETE("/slots/:id", h.delete)
	private.GET("/slots/:id/bookings", h.listBookings)
}

func (h *SlotHandler) create(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("listing_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	var req createSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := h.service.CreateSlot(c.Request.Context(), slots.CreateSlotInput{
		ListingID:  listingID,
		LandlordID: callerID(c),
		Start:      req.Start,
		End:        req.End,
		Capacity:   req.Capacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func (h *SlotHandler) list(c *gin.Context) {
	listingID, err := strconv.ParseInt(c.Param("listing_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}

	views, err := h.service.ListSlots(c.Request.Context(), listingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *SlotHandler) delete(c *gin.Context) {
	slotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	if err := h.service.DeleteSlot(c.Request.Context(), slotID, callerID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": slotID})
}

func (h *SlotHandler) listBookings(c *gin.Context) {
	slotID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id"})
		return
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), slotID, callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
