package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// PricingHandler serves price suggestions for venues.
type PricingHandler struct {
	Pricing PricingUseCase
	Timeout time.Duration
}

func NewPricingHandler(p PricingUseCase, timeout time.Duration) *PricingHandler {
	return &PricingHandler{Pricing: p, Timeout: timeout}
}

// Suggest: GET /v1/venues/:id/price-suggestion?at=RFC3339&hours=N
// at defaults to now and hours to 1.
func (h *PricingHandler) Suggest(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid venue id")
	}
	at := time.Now().UTC()
	if s := c.QueryParam("at"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return badRequest(c, "at must be RFC3339")
		}
		at = t
	}
	hours := 1.0
	if s := c.QueryParam("hours"); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return badRequest(c, "hours must be a number")
		}
		hours = n
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	q, err := h.Pricing.SuggestForVenue(ctx, id, at, hours)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}
