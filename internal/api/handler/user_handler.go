package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// UserHandler serves the users collection: the role profiles themselves.
// Authorization happened in the route middleware before any method here
// runs — reads are owner-only, writes require super_admin.
type UserHandler struct {
	profiles ports.ProfileRepository
}

func NewUserHandler(profiles ports.ProfileRepository) *UserHandler {
	return &UserHandler{profiles: profiles}
}

type profileRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=viewer editor admin super_admin"`
}

// Get returns the profile for one identity.
//
// @Summary      Read a user profile
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "Identity id"
// @Success      200  {object}  domain.UserProfile
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	profile, err := h.profiles.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Put creates or replaces a profile. This is the privileged role-assignment
// path; the rule middleware has already required super_admin.
//
// @Summary      Create or replace a user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Identity id"
// @Param        body  body      profileRequest  true  "Profile document"
// @Success      200   {object}  domain.UserProfile
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Put(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	id := c.Param("id")
	created := time.Now().UTC()
	if existing, err := h.profiles.GetProfile(c.Request().Context(), id); err == nil {
		created = existing.CreatedAt
	}

	profile := &domain.UserProfile{
		Email:     req.Email,
		Role:      domain.ParseRole(req.Role),
		CreatedAt: created,
	}
	if err := h.profiles.PutProfile(c.Request().Context(), id, profile); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete removes a profile.
//
// @Summary      Delete a user profile
// @Tags         users
// @Param        id  path  string  true  "Identity id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.profiles.DeleteProfile(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
