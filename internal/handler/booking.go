package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/service"
	"github.com/iliyamo/hall-booking/internal/validator"
)

// BookingHandler exposes booking submission, moderation and listings.
type BookingHandler struct {
	Bookings BookingUseCase
	Timeout  time.Duration
}

func NewBookingHandler(b BookingUseCase, timeout time.Duration) *BookingHandler {
	return &BookingHandler{Bookings: b, Timeout: timeout}
}

type createBookingReq struct {
	VenueID   uint64    `json:"venue_id" validate:"required,gt=0"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	EventName *string   `json:"event_name" validate:"omitempty,max=255"`
	EventType *string   `json:"event_type" validate:"omitempty,max=64"`
	Attendees *int      `json:"attendees" validate:"omitempty,gte=0"`
	Remarks   *string   `json:"remarks" validate:"omitempty,max=1000"`
}

type statusReq struct {
	Status string `json:"status" validate:"required,booking_status"`
}

type listResp struct {
	Items []model.BookingDetail `json:"items"`
	Count int                   `json:"count"`
}

func newListResp(items []model.BookingDetail) listResp {
	if items == nil {
		items = []model.BookingDetail{}
	}
	return listResp{Items: items, Count: len(items)}
}

// Create: POST /v1/bookings. The booking starts PENDING.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	b, err := h.Bookings.Submit(ctx, service.BookingRequest{
		VenueID:   req.VenueID,
		UserID:    uid,
		Start:     req.StartTime,
		End:       req.EndTime,
		EventName: req.EventName,
		EventType: req.EventType,
		Attendees: req.Attendees,
		Remarks:   req.Remarks,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Get: GET /v1/bookings/:id
func (h *BookingHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	b, err := h.Bookings.Get(ctx, id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel: DELETE /v1/bookings/:id cancels the caller's booking.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, model.BookingCancelled)
}

// Approve, Reject and Complete are owner shortcuts for the status endpoint.
func (h *BookingHandler) Approve(c echo.Context) error {
	return h.transition(c, model.BookingApproved)
}

func (h *BookingHandler) Reject(c echo.Context) error {
	return h.transition(c, model.BookingRejected)
}

func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, model.BookingCompleted)
}

// UpdateStatus: PUT /v1/{owner,admin}/bookings/:id/status {"status": "..."}
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}
	target, err := model.ParseBookingStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return h.transition(c, target)
}

func (h *BookingHandler) transition(c echo.Context, target model.BookingStatus) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid booking id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	b, err := h.Bookings.Transition(ctx, id, target, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// MyBookings: GET /v1/my-bookings
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	items, err := h.Bookings.ListForUser(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newListResp(items))
}

// MyStats: GET /v1/my-bookings/stats
func (h *BookingHandler) MyStats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	st, err := h.Bookings.UserStats(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// OwnerBookings: GET /v1/owner/bookings
func (h *BookingHandler) OwnerBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	items, err := h.Bookings.ListForOwner(ctx, uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newListResp(items))
}

// AllBookings: GET /v1/admin/bookings
func (h *BookingHandler) AllBookings(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	items, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newListResp(items))
}
