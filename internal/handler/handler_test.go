package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hall-booking/internal/middleware"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/service"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) Submit(ctx context.Context, req service.BookingRequest) (*model.Booking, error) {
	args := m.Called(req)
	b, _ := args.Get(0).(*model.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) Transition(ctx context.Context, id uint64, target model.BookingStatus, actor model.Actor) (*model.BookingDetail, error) {
	args := m.Called(id, target, actor)
	b, _ := args.Get(0).(*model.BookingDetail)
	return b, args.Error(1)
}

func (m *mockBookings) Get(ctx context.Context, id uint64, actor model.Actor) (*model.BookingDetail, error) {
	args := m.Called(id, actor)
	b, _ := args.Get(0).(*model.BookingDetail)
	return b, args.Error(1)
}

func (m *mockBookings) ListForOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error) {
	args := m.Called(ownerID)
	out, _ := args.Get(0).([]model.BookingDetail)
	return out, args.Error(1)
}

func (m *mockBookings) ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	args := m.Called(userID)
	out, _ := args.Get(0).([]model.BookingDetail)
	return out, args.Error(1)
}

func (m *mockBookings) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	args := m.Called()
	out, _ := args.Get(0).([]model.BookingDetail)
	return out, args.Error(1)
}

func (m *mockBookings) UserStats(ctx context.Context, userID uint64) (service.UserStats, error) {
	args := m.Called(userID)
	return args.Get(0).(service.UserStats), args.Error(1)
}

func (m *mockBookings) Availability(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error) {
	args := m.Called(venueID, from, to)
	out, _ := args.Get(0).([]model.Interval)
	return out, args.Error(1)
}

type stubPricing struct {
	venueID uint64
	at      time.Time
	hours   float64
	err     error
}

func (s *stubPricing) SuggestForVenue(ctx context.Context, venueID uint64, at time.Time, hours float64) (service.PriceQuote, error) {
	s.venueID, s.at, s.hours = venueID, at, hours
	if s.err != nil {
		return service.PriceQuote{}, s.err
	}
	return service.PriceQuote{VenueID: venueID, SuggestedPrice: 120, Reason: "Premium time slot"}, nil
}

// call runs h with an authenticated context for uid/role. uid 0 means anonymous.
func call(h echo.HandlerFunc, method, target, body string, uid uint64, role string, params ...string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if uid != 0 {
		c.Set(middleware.CtxUserID, uid)
		c.Set(middleware.CtxRole, role)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("get: %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("create: %w", service.ErrConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", service.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("x: %w", service.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("bad: %w", service.ErrInvalidArgument), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, msg := statusFor(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}
	_, msg := statusFor(errors.New("dial tcp 10.0.0.1: refused"))
	assert.Equal(t, "internal error", msg)
	_, msg = statusFor(fmt.Errorf("venue 3 still has bookings: %w", service.ErrConflict))
	assert.Equal(t, "venue 3 still has bookings", msg)
}

func TestCreateBooking(t *testing.T) {
	bs := new(mockBookings)
	h := NewBookingHandler(bs, time.Second)
	start := time.Date(2030, 6, 4, 10, 0, 0, 0, time.UTC)

	bs.On("Submit", mock.MatchedBy(func(r service.BookingRequest) bool {
		return r.UserID == 20 && r.VenueID == 7 && r.Start.Equal(start)
	})).Return(&model.Booking{ID: 1, VenueID: 7, UserID: 20, Status: model.BookingPending}, nil).Once()

	body := `{"venue_id":7,"start_time":"2030-06-04T10:00:00Z","end_time":"2030-06-04T12:00:00Z"}`
	rec := call(h.Create, http.MethodPost, "/v1/bookings", body, 20, model.RoleUser)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "PENDING", decode(t, rec)["status"])
	bs.AssertExpectations(t)
}

func TestCreateBooking_Validation(t *testing.T) {
	bs := new(mockBookings)
	h := NewBookingHandler(bs, time.Second)

	body := `{"venue_id":7,"start_time":"2030-06-04T12:00:00Z","end_time":"2030-06-04T10:00:00Z"}`
	rec := call(h.Create, http.MethodPost, "/v1/bookings", body, 20, model.RoleUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := decode(t, rec)["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "end_time")
	bs.AssertNotCalled(t, "Submit", mock.Anything)
}

func TestCreateBooking_ConflictAndAnonymous(t *testing.T) {
	bs := new(mockBookings)
	h := NewBookingHandler(bs, time.Second)
	bs.On("Submit", mock.Anything).Return(nil, fmt.Errorf("create booking: %w", service.ErrConflict))

	body := `{"venue_id":7,"start_time":"2030-06-04T10:00:00Z","end_time":"2030-06-04T12:00:00Z"}`
	assert.Equal(t, http.StatusConflict, call(h.Create, http.MethodPost, "/", body, 20, model.RoleUser).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h.Create, http.MethodPost, "/", body, 0, "").Code)
}

func TestTransitionEndpoints(t *testing.T) {
	owner := model.Actor{UserID: 10, Role: model.RoleHallOwner}
	detail := &model.BookingDetail{Booking: model.Booking{ID: 5, Status: model.BookingApproved}}

	bs := new(mockBookings)
	h := NewBookingHandler(bs, time.Second)
	bs.On("Transition", uint64(5), model.BookingApproved, owner).Return(detail, nil)
	bs.On("Transition", uint64(5), model.BookingCompleted, owner).Return(nil, fmt.Errorf("transition: %w", service.ErrInvalidTransition))
	bs.On("Transition", uint64(5), model.BookingPending, owner).Return(nil, fmt.Errorf("transition: %w", service.ErrInvalidTransition))
	bs.On("Transition", uint64(6), model.BookingCancelled, model.Actor{UserID: 30, Role: model.RoleUser}).Return(nil, fmt.Errorf("transition: %w", service.ErrForbidden))

	rec := call(h.Approve, http.MethodPut, "/", "", 10, model.RoleHallOwner, "id", "5")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(h.UpdateStatus, http.MethodPut, "/", `{"status":"approved"}`, 10, model.RoleHallOwner, "id", "5")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(h.Complete, http.MethodPut, "/", "", 10, model.RoleHallOwner, "id", "5")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(h.UpdateStatus, http.MethodPut, "/", `{"status":"pending"}`, 10, model.RoleHallOwner, "id", "5")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(h.Cancel, http.MethodDelete, "/", "", 30, model.RoleUser, "id", "6")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(h.UpdateStatus, http.MethodPut, "/", `{"status":"ARCHIVED"}`, 10, model.RoleHallOwner, "id", "5")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec), "fields")

	rec = call(h.Approve, http.MethodPut, "/", "", 10, model.RoleHallOwner, "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	bs.AssertExpectations(t)
}

func TestListsAndStats(t *testing.T) {
	bs := new(mockBookings)
	h := NewBookingHandler(bs, time.Second)
	bs.On("ListForUser", uint64(20)).Return(nil, nil)
	bs.On("UserStats", uint64(20)).Return(service.UserStats{Total: 3, Upcoming: 1}, nil)
	bs.On("ListAll").Return(nil, errors.New("boom"))

	rec := call(h.MyBookings, http.MethodGet, "/", "", 20, model.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode(t, rec)["count"])
	assert.Equal(t, []any{}, decode(t, rec)["items"])

	rec = call(h.MyStats, http.MethodGet, "/", "", 20, model.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["total_bookings"])

	rec = call(h.AllBookings, http.MethodGet, "/", "", 40, model.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decode(t, rec)["error"])
}

func TestAvailability(t *testing.T) {
	bs := new(mockBookings)
	h := NewVenueHandler(nil, bs, time.Second)
	from := time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	bs.On("Availability", uint64(7),
		mock.MatchedBy(func(t time.Time) bool { return t.Equal(from) }),
		mock.MatchedBy(func(t time.Time) bool { return t.Equal(to) }),
	).Return([]model.Interval{{Start: from.Add(10 * time.Hour), End: from.Add(12 * time.Hour)}}, nil)

	rec := call(h.Availability, http.MethodGet, "/?from=2030-06-04T00:00:00Z&to=2030-06-05T00:00:00Z", "", 0, "", "id", "7")
	assert.Equal(t, http.StatusOK, rec.Code)
	busy, ok := decode(t, rec)["busy"].([]any)
	require.True(t, ok)
	assert.Len(t, busy, 1)

	rec = call(h.Availability, http.MethodGet, "/?from=yesterday", "", 0, "", "id", "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPriceSuggestion(t *testing.T) {
	p := &stubPricing{}
	h := NewPricingHandler(p, time.Second)

	rec := call(h.Suggest, http.MethodGet, "/?at=2030-06-08T19:00:00%2B02:00&hours=3", "", 20, model.RoleUser, "id", "7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), p.venueID)
	assert.Equal(t, 3.0, p.hours)
	assert.Equal(t, 19, p.at.Hour(), "offset of the caller is preserved")
	assert.Equal(t, "Premium time slot", decode(t, rec)["reason"])

	rec = call(h.Suggest, http.MethodGet, "/?hours=many", "", 20, model.RoleUser, "id", "7")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	p.err = fmt.Errorf("get venue: %w", service.ErrNotFound)
	rec = call(h.Suggest, http.MethodGet, "/", "", 20, model.RoleUser, "id", "9")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, p.hours)
}

func TestRegisterRole(t *testing.T) {
	assert.Equal(t, model.RoleHallOwner, registerRole(" hall_owner "))
	assert.Equal(t, model.RoleUser, registerRole("ADMIN"))
	assert.Equal(t, model.RoleUser, registerRole(""))
}
