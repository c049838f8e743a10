package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/parentdesk/portal-auth/internal/api/metrics"
	"github.com/parentdesk/portal-auth/internal/core/domain"
	"github.com/parentdesk/portal-auth/internal/core/ports"
)

// Auditor receives auth events for the audit trail.
type Auditor interface {
	Enqueue(entry domain.AuditEntry)
}

type AuthHandler struct {
	authService ports.AuthService
	auditor     Auditor
}

func NewAuthHandler(authService ports.AuthService, auditor Auditor) *AuthHandler {
	return &AuthHandler{authService: authService, auditor: auditor}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=viewer editor admin super_admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string           `json:"token,omitempty"`
	User  *domain.Identity `json:"user,omitempty"`
}

// Register creates a new account: an identity plus its role profile.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, domain.ParseRole(req.Role))

	role := req.Role
	if role == "" {
		role = string(domain.RoleViewer)
	}
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues(role, "ok").Inc()
		h.audit(identity.ID, "register", domain.AuditAllowed)
	case errors.Is(err, domain.ErrProfileWrite):
		metrics.SignupsTotal.WithLabelValues(role, "orphaned").Inc()
		h.audit(identity.ID, "register", domain.AuditFailed)
	default:
		metrics.SignupsTotal.WithLabelValues(role, "error").Inc()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: identity})
}

// Login verifies a credential pair and returns a bearer token. The token
// identifies the account; it says nothing about its role.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, identity, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	h.audit(identity.ID, "login", domain.AuditAllowed)

	return c.JSON(http.StatusOK, authResponse{Token: token, User: identity})
}

// Logout ends the provider session. Local state clears regardless of the
// remote outcome, so the client treats any error here as advisory.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      502   {object}  map[string]string
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	requesterID, _ := c.Get("identity_id").(string)

	if err := h.authService.SignOut(c.Request().Context()); err != nil {
		h.audit(requesterID, "logout", domain.AuditFailed)
		return err
	}

	h.audit(requesterID, "logout", domain.AuditAllowed)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) audit(actor, action, decision string) {
	if h.auditor == nil {
		return
	}
	h.auditor.Enqueue(domain.AuditEntry{
		Actor:     actor,
		Action:    action,
		Decision:  decision,
		Timestamp: time.Now().UTC(),
	})
}
