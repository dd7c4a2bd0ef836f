package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/service"
)

// SessionHandler exposes login, logout and registration endpoints.
type SessionHandler struct {
	authService   *service.AuthService
	registrations *service.RegistrationService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(authService *service.AuthService, registrations *service.RegistrationService) *SessionHandler {
	return &SessionHandler{authService: authService, registrations: registrations}
}

// LoginAdmin handles POST /auth/admin/login.
func (h *SessionHandler) LoginAdmin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password required")
	}
	session, err := h.authService.LoginAdmin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return h.respond(c, session)
}

// LoginTeamMember handles POST /auth/team/login.
func (h *SessionHandler) LoginTeamMember(c *fiber.Ctx) error {
	var req dto.MobileLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	session, err := h.authService.LoginTeamMember(c.UserContext(), req.MobileNumber)
	if err != nil {
		return err
	}
	return h.respond(c, session)
}

// LoginMember handles POST /auth/member/login.
func (h *SessionHandler) LoginMember(c *fiber.Ctx) error {
	var req dto.MobileLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	session, err := h.authService.LoginMember(c.UserContext(), req.MobileNumber)
	if err != nil {
		return err
	}
	return h.respond(c, session)
}

// LoginGuest handles POST /auth/guest/login.
func (h *SessionHandler) LoginGuest(c *fiber.Ctx) error {
	var req dto.GuestLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PanchayathID == "" {
		return fiber.NewError(http.StatusBadRequest, "panchayath_id required")
	}
	session, err := h.authService.LoginGuest(c.UserContext(), req.Name, req.PanchayathID)
	if err != nil {
		return err
	}
	return h.respond(c, session)
}

// Register handles POST /auth/register.
func (h *SessionHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	request, err := h.registrations.Register(c.UserContext(), service.RegistrationInput{
		Username:     req.Username,
		MobileNumber: req.MobileNumber,
		PanchayathID: req.PanchayathID,
		Ward:         req.Ward,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": registrationResponse(request)})
}

// Logout handles POST /auth/logout. Every valid token presented is revoked.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	tokens := auth.SessionTokens(c)
	if err := h.authService.Logout(c.UserContext(), tokens); err != nil {
		return err
	}
	for _, src := range auth.SlotSources {
		c.Cookie(&fiber.Cookie{Name: src.Cookie, Value: "", Expires: time.Unix(0, 0), HTTPOnly: true})
	}
	slots := make([]domain.SessionSlot, 0, len(tokens))
	for _, src := range auth.SlotSources {
		if _, ok := tokens[src.Slot]; ok {
			slots = append(slots, src.Slot)
		}
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"revoked": slots}})
}

// CreateAdminUser handles POST /admin/users.
func (h *SessionHandler) CreateAdminUser(c *fiber.Ctx) error {
	var req dto.CreateAdminUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	user, err := h.authService.CreateAdminUser(c.UserContext(), auth.PrincipalFromContext(c), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": adminUserResponse(user)})
}

// respond writes the session payload and sets the matching slot cookie.
func (h *SessionHandler) respond(c *fiber.Ctx, session *service.Session) error {
	for _, src := range auth.SlotSources {
		if src.Slot == session.Slot {
			c.Cookie(&fiber.Cookie{
				Name:     src.Cookie,
				Value:    session.Token,
				Expires:  session.Meta.ExpiresAt,
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}
