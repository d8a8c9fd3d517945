// Package pricing computes rule-based hourly price suggestions for venues.
//
// The engine is deterministic: the same base rate, instant and capacity
// always produce the same suggestion.  It holds no mutable state and is
// safe for concurrent use.
package pricing

import (
	"errors"
	"math"
	"time"
)

// Reasons attached to a suggestion, derived from the suggested price
// relative to the base rate.
const (
	ReasonPremium  = "high-demand premium"
	ReasonDiscount = "low-demand discount"
	ReasonStandard = "standard pricing"
)

// DefaultCapacity is used for venues whose capacity is unknown.
const DefaultCapacity = 100

// ErrInvalidInput is returned for a negative or non-finite base rate or a
// negative capacity.
var ErrInvalidInput = errors.New("pricing: invalid input")

// Rules holds the multipliers and bounds applied by Engine.  The zero
// value is not useful; use DefaultRules.
type Rules struct {
	WeekendFactor   float64
	EveningHour     int
	EveningFactor   float64
	AfternoonHour   int
	AfternoonFactor float64
	MorningFactor   float64

	LargeCapacity int
	LargeFactor   float64
	SmallCapacity int
	SmallFactor   float64
	FloorFactor   float64
	CeilFactor    float64
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		WeekendFactor:   1.20,
		EveningHour:     18,
		EveningFactor:   1.15,
		AfternoonHour:   12,
		AfternoonFactor: 1.00,
		MorningFactor:   0.90,
		LargeCapacity:   200,
		LargeFactor:     1.10,
		SmallCapacity:   50,
		SmallFactor:     0.90,
		FloorFactor:     0.70,
		CeilFactor:      1.50,
	}
}

// Suggestion is the outcome of a single evaluation.  Price is rounded to
// two decimals; Raw keeps the clamped unrounded value.
type Suggestion struct {
	Price  float64 `json:"suggested_price"`
	Raw    float64 `json:"-"`
	Reason string  `json:"reason"`
}

// Engine evaluates Rules.  Build one per process and inject it.
type Engine struct {
	rules Rules
}

// NewEngine returns an engine using rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Default returns an engine using DefaultRules.
func Default() *Engine { return NewEngine(DefaultRules()) }

// Suggest returns the suggested hourly price for base at instant for a
// venue holding capacity people.  The instant's own location decides the
// weekday and hour; callers pass times in the venue's local zone.
func (e *Engine) Suggest(base float64, at time.Time, capacity int) (Suggestion, error) {
	if math.IsNaN(base) || math.IsInf(base, 0) || base < 0 || capacity < 0 {
		return Suggestion{}, ErrInvalidInput
	}

	price := base * e.timeFactor(at) * e.capacityFactor(capacity)

	lo, hi := base*e.rules.FloorFactor, base*e.rules.CeilFactor
	price = math.Min(math.Max(price, lo), hi)

	reason := ReasonStandard
	switch {
	case price > base:
		reason = ReasonPremium
	case price < base:
		reason = ReasonDiscount
	}
	return Suggestion{Price: Round2(price), Raw: price, Reason: reason}, nil
}

// first matching rule wins
func (e *Engine) timeFactor(at time.Time) float64 {
	switch wd := at.Weekday(); {
	case wd == time.Saturday || wd == time.Sunday:
		return e.rules.WeekendFactor
	case at.Hour() >= e.rules.EveningHour:
		return e.rules.EveningFactor
	case at.Hour() >= e.rules.AfternoonHour:
		return e.rules.AfternoonFactor
	default:
		return e.rules.MorningFactor
	}
}

func (e *Engine) capacityFactor(capacity int) float64 {
	switch {
	case capacity > e.rules.LargeCapacity:
		return e.rules.LargeFactor
	case capacity < e.rules.SmallCapacity:
		return e.rules.SmallFactor
	default:
		return 1
	}
}

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
