package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/service"
	"github.com/iliyamo/hall-booking/internal/validator"
)

// UserHandler serves PUT /v1/me and the admin user endpoints.
type UserHandler struct {
	Users   UserUseCase
	Timeout time.Duration
}

func NewUserHandler(u UserUseCase, timeout time.Duration) *UserHandler {
	return &UserHandler{Users: u, Timeout: timeout}
}

type profileReq struct {
	Email           *string `json:"email" validate:"omitempty,email,max=255"`
	FullName        *string `json:"full_name" validate:"omitempty,max=255"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	CurrentPassword *string `json:"current_password"`
	NewPassword     *string `json:"new_password" validate:"omitempty,min=8,max=72"`
}

type userListResp struct {
	Items []userResp `json:"items"`
	Count int        `json:"count"`
}

type roleReq struct {
	Role string `json:"role" validate:"required,role"`
}

// UpdateMe: PUT /v1/me
func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, service.ProfileInput{
		Email:           req.Email,
		FullName:        req.FullName,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// List: GET /v1/admin/users?limit=&offset=
func (h *UserHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	users, err := h.Users.List(ctx, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]userResp, 0, len(users))
	for i := range users {
		items = append(items, toUserResp(&users[i]))
	}
	return c.JSON(http.StatusOK, userListResp{Items: items, Count: len(items)})
}

// Get: GET /v1/admin/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Users.Get(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// SetRole: PUT /v1/admin/users/:id/role
func (h *UserHandler) SetRole(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if fields := validator.Validate(req); fields != nil {
		return validationFailed(c, fields)
	}

	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	u, err := h.Users.SetRole(ctx, actor, id, req.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete: DELETE /v1/admin/users/:id
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	ctx, cancel := withTimeout(c, h.Timeout)
	defer cancel()

	if err := h.Users.Delete(ctx, actor, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
