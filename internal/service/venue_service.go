package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iliyamo/hall-booking/internal/logger"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/repository"
)

// VenueInput holds the writable venue fields. Nil pointers leave the
// current value untouched on update.
type VenueInput struct {
	Name         *string
	Description  *string
	Location     *string
	Facilities   *string
	ImageURL     *string
	Capacity     *int
	PricePerHour *float64
	Available    *bool
}

// Page is a slice of venues plus paging metadata.
type Page struct {
	Items  []model.Venue `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// VenueService manages venues on behalf of owners and serves public listings.
type VenueService struct {
	venues VenueRepository
}

func NewVenueService(venues VenueRepository) *VenueService {
	return &VenueService{venues: venues}
}

// Create stores a new venue owned by actor.
func (s *VenueService) Create(ctx context.Context, actor model.Actor, in VenueInput) (*model.Venue, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", ErrInvalidArgument)
	}
	v := &model.Venue{OwnerID: actor.UserID, Available: true}
	if err := apply(v, in); err != nil {
		return nil, err
	}
	if err := s.venues.Create(ctx, v); err != nil {
		return nil, fmt.Errorf("create venue: %w", err)
	}
	logger.FromContext(ctx).Info().Uint64("venue_id", v.ID).Uint64("owner_id", v.OwnerID).Msg("venue created")
	return v, nil
}

// Update changes a venue owned by actor. Admins may update any venue.
func (s *VenueService) Update(ctx context.Context, actor model.Actor, id uint64, in VenueInput) (*model.Venue, error) {
	v, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := apply(v, in); err != nil {
		return nil, err
	}
	if err := s.venues.Update(ctx, v); err != nil {
		return nil, wrapRepoErr("update venue", err)
	}
	return v, nil
}

// Delete removes a venue owned by actor. Venues with bookings cannot be removed.
func (s *VenueService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.venues.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("venue %d still has bookings: %w", id, ErrConflict)
		}
		return wrapRepoErr("delete venue", err)
	}
	logger.FromContext(ctx).Info().Uint64("venue_id", id).Uint64("actor_id", actor.UserID).Msg("venue deleted")
	return nil
}

// ListMine returns the actor's venues.
func (s *VenueService) ListMine(ctx context.Context, actor model.Actor) ([]model.Venue, error) {
	out, err := s.venues.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list owner venues: %w", err)
	}
	return out, nil
}

// Get returns any venue by id.
func (s *VenueService) Get(ctx context.Context, id uint64) (*model.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("get venue", err)
	}
	return v, nil
}

// List returns a page of bookable venues. limit is clamped to [1, 100].
func (s *VenueService) List(ctx context.Context, limit, offset int) (Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.venues.List(ctx, true, limit, offset)
	if err != nil {
		return Page{}, fmt.Errorf("list venues: %w", err)
	}
	return Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *VenueService) owned(ctx context.Context, actor model.Actor, id uint64) (*model.Venue, error) {
	v, err := s.venues.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("get venue", err)
	}
	if v.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("venue %d: %w", id, ErrForbidden)
	}
	return v, nil
}

func apply(v *model.Venue, in VenueInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fmt.Errorf("name must not be empty: %w", ErrInvalidArgument)
		}
		v.Name = name
	}
	if in.PricePerHour != nil {
		p := *in.PricePerHour
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("price_per_hour must be a non-negative number: %w", ErrInvalidArgument)
		}
		v.PricePerHour = in.PricePerHour
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return fmt.Errorf("capacity must be positive: %w", ErrInvalidArgument)
		}
		v.Capacity = in.Capacity
	}
	if in.Description != nil {
		v.Description = in.Description
	}
	if in.Location != nil {
		v.Location = in.Location
	}
	if in.Facilities != nil {
		v.Facilities = in.Facilities
	}
	if in.ImageURL != nil {
		v.ImageURL = in.ImageURL
	}
	if in.Available != nil {
		v.Available = *in.Available
	}
	return nil
}
