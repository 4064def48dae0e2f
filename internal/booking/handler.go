package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/w4xxwrld/aiga-connect-sub000/internal/api"
	"github.com/w4xxwrld/aiga-connect-sub000/internal/auth"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateBooking godoc
// @Summary      Book a class occurrence
// @Description  An athlete books for themselves, a parent for a linked athlete. The booking starts pending.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      booking.CreateBookingRequest  true  "Booking payload"
// @Success      201      {object}  booking.Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListBookings godoc
// @Summary      List bookings visible to the caller
// @Description  Athletes see their own, parents their linked athletes', coaches those on their classes.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   booking.Booking
// @Failure      401  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.ListBookingsForActor(c.Request.Context(), actor)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary      Get a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  booking.Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// ApproveBooking godoc
// @Summary      Approve a pending booking
// @Description  Owning coach only. Fails with capacity_exceeded when the occurrence is full; the booking then stays pending.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  booking.Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/approve [post]
func (h *Handler) ApproveBooking(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	b, err := h.service.ApproveBooking(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// DeclineBooking godoc
// @Summary      Decline a pending booking
// @Description  Owning coach only; a reason is required.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                     true  "Booking ID"
// @Param        request    body      booking.ReasonRequest  true  "Reason"
// @Success      200        {object}  booking.Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/decline [post]
func (h *Handler) DeclineBooking(c *gin.Context) {
	h.withReason(c, h.service.DeclineBooking)
}

// CancelBooking godoc
// @Summary      Cancel a booking
// @Description  The athlete, the parent who booked, or the owning coach; a reason is required.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                     true  "Booking ID"
// @Param        request    body      booking.ReasonRequest  true  "Reason"
// @Success      200        {object}  booking.Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	h.withReason(c, h.service.CancelBooking)
}

type reasonFunc func(ctx context.Context, actor auth.Actor, id int, reason string) (*Booking, error)

func (h *Handler) withReason(c *gin.Context, fn reasonFunc) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	id, ok := api.ParamID(c, "bookingID")
	if !ok {
		return
	}

	var req ReasonRequest
	if !api.BindAndValidate(c, &req) {
		return
	}

	b, err := fn(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// Roster godoc
// @Summary      Bookings for one class occurrence
// @Description  Owning coach only.
// @Tags         bookings,classes
// @Security     BearerAuth
// @Produce      json
// @Param        classID  path      int     true  "Class ID"
// @Param        date     path      string  true  "Occurrence date (YYYY-MM-DD)"
// @Success      200      {array}   booking.RosterEntry
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /classes/{classID}/occurrences/{date}/bookings [get]
func (h *Handler) Roster(c *gin.Context) {
	actor, ok := auth.GetActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	classID, ok := api.ParamID(c, "classID")
	if !ok {
		return
	}

	roster, err := h.service.Roster(c.Request.Context(), actor, classID, c.Param("date"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, roster)
}
