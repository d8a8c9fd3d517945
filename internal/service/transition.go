package service

import (
	"fmt"

	"github.com/iliyamo/hall-booking/internal/model"
)

// actorKind is the relation of an actor to a booking.
type actorKind uint8

const (
	actorRequester actorKind = 1 << iota
	actorOwner
	actorAdmin
)

type edge struct {
	from, to model.BookingStatus
}

// transitions lists every legal status change and who may perform it.
// Anything missing, including every edge out of a terminal status and
// every edge into PENDING, is an invalid transition.
var transitions = map[edge]actorKind{
	{model.BookingPending, model.BookingApproved}:   actorOwner | actorAdmin,
	{model.BookingPending, model.BookingRejected}:   actorOwner | actorAdmin,
	{model.BookingPending, model.BookingCancelled}:  actorRequester | actorOwner | actorAdmin,
	{model.BookingApproved, model.BookingCancelled}: actorRequester | actorOwner | actorAdmin,
	{model.BookingApproved, model.BookingCompleted}: actorOwner | actorAdmin,
}

// relation returns the set of roles actor plays for b. Zero means the
// actor has nothing to do with the booking.
func relation(b *model.BookingDetail, actor model.Actor) actorKind {
	var k actorKind
	if actor.IsAdmin() {
		k |= actorAdmin
	}
	if b.VenueOwnerID == actor.UserID {
		k |= actorOwner
	}
	if b.UserID == actor.UserID {
		k |= actorRequester
	}
	return k
}

// checkTransition decides whether actor may move b to target.
func checkTransition(b *model.BookingDetail, target model.BookingStatus, actor model.Actor) error {
	rel := relation(b, actor)
	if rel == 0 {
		return fmt.Errorf("booking %d: %w", b.ID, ErrForbidden)
	}
	// a plain requester may only cancel
	if rel == actorRequester && target != model.BookingCancelled {
		return fmt.Errorf("requester may only cancel booking %d: %w", b.ID, ErrForbidden)
	}
	allowed, ok := transitions[edge{b.Status, target}]
	if !ok {
		return fmt.Errorf("%s -> %s: %w", b.Status, target, ErrInvalidTransition)
	}
	if allowed&rel == 0 {
		return fmt.Errorf("%s -> %s: %w", b.Status, target, ErrForbidden)
	}
	return nil
}
