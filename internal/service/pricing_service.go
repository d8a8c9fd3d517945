package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iliyamo/hall-booking/internal/pricing"
)

// PriceQuote is the suggestion for one venue at one instant.
type PriceQuote struct {
	VenueID        uint64  `json:"venue_id"`
	CurrentPrice   float64 `json:"current_price"`
	SuggestedPrice float64 `json:"suggested_price"`
	Reason         string  `json:"reason"`
	DurationHours  float64 `json:"duration_hours"`
	CurrentTotal   float64 `json:"current_total"`
	SuggestedTotal float64 `json:"suggested_total"`
}

// PricingService applies the price engine to stored venues.
type PricingService struct {
	venues VenueRepository
	engine PriceSuggester
}

func NewPricingService(venues VenueRepository, engine PriceSuggester) *PricingService {
	return &PricingService{venues: venues, engine: engine}
}

// SuggestForVenue quotes the venue's hourly rate for an event at the given
// instant lasting durationHours.
func (s *PricingService) SuggestForVenue(ctx context.Context, venueID uint64, at time.Time, durationHours float64) (PriceQuote, error) {
	if math.IsNaN(durationHours) || math.IsInf(durationHours, 0) || durationHours <= 0 {
		return PriceQuote{}, fmt.Errorf("duration must be positive: %w", ErrInvalidArgument)
	}
	v, err := s.venues.GetByID(ctx, venueID)
	if err != nil {
		return PriceQuote{}, wrapRepoErr("get venue", err)
	}

	base := v.Rate()
	sg, err := s.engine.Suggest(base, at, v.CapacityOr(pricing.DefaultCapacity))
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			return PriceQuote{}, fmt.Errorf("venue %d: %w: %w", venueID, ErrInvalidArgument, err)
		}
		return PriceQuote{}, err
	}

	return PriceQuote{
		VenueID:        v.ID,
		CurrentPrice:   pricing.Round2(base),
		SuggestedPrice: sg.Price,
		Reason:         sg.Reason,
		DurationHours:  durationHours,
		CurrentTotal:   pricing.Round2(base * durationHours),
		SuggestedTotal: pricing.Round2(sg.Raw * durationHours),
	}, nil
}
