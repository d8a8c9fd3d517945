package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/service"
	"github.com/iliyamo/hall-booking/internal/validator"
)

// VenueHandler serves public browsing and owner venue management.
type VenueHandler struct {
	Venues   VenueUseCase
	Bookings BookingUseCase
	Timeout  time.Duration
}

func NewVenueHandler(v VenueUseCase, b BookingUseCase, timeout time.Duration) *VenueHandler {
	return &VenueHandler{Venues: v, Bookings: b, Timeout: timeout}
}

type venueReq struct {
	Name         *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description  *string  `json:"description"`
	Location     *string  `json:"location" validate:"omitempty,max=255"`
	Facilities   *string  `json:"facilities"`
	ImageURL     *string  `json:"image_url" validate:"omitempty,url,max=512"`
	Capacity     *int     `json:"capacity" validate:"omitempty,gt=0"`
	PricePerHour *float64 `json:"price_per_hour" validate:"omitempty,gte=0"`
	Available    *bool    `json:"available"`
}

func (r venueReq) input() service.VenueInput {
	return service.VenueInput{
		Name:         r.Name,
		Description:  r.Description,
		Location:     r.Location,
		Facilities:   r.Facilities,
		ImageURL:     r.ImageURL,
		Capacity:     r.Capacity,
		PricePerHour: r.PricePerHour,
		Available:    r.Available,
	}
}

// List: GET /v1/venues?limit=&offset=
func (h *VenueHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	page, err := h.Venues.List(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Get: GET /v1/venues/:id
func (h *VenueHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	v, err := h.Venues.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Availability: GET /v1/venues/:id/availability?from=&to=
// Both bounds are RFC3339. The window defaults to the next seven days.
func (h *VenueHandler) Availability(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	from := time.Now().UTC()
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "from must be RFC3339")
		}
		from = t
	}
	to := from.Add(7 * 24 * time.Hour)
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "to must be RFC3339")
		}
		to = t
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	busy, err := h.Bookings.Availability(ctx, id, from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id": id,
		"from":     from.UTC(),
		"to":       to.UTC(),
		"busy":     busy,
	})
}

// Create: POST /v1/owner/venues
func (h *VenueHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	v, err := h.Venues.Create(ctx, actor, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// Update: PUT/PATCH /v1/owner/venues/:id. Omitted fields are kept.
func (h *VenueHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	v, err := h.Venues.Update(ctx, actor, id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete: DELETE /v1/owner/venues/:id
func (h *VenueHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	if err := h.Venues.Delete(ctx, actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListMine: GET /v1/owner/venues
func (h *VenueHandler) ListMine(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	items, err := h.Venues.ListMine(ctx, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
