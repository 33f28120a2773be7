package handler

import (
	"context"
	"errors"
	"time"

	"go-catalog-ws/internal/middleware"
	"go-catalog-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// GitHubLogin is the OAuth collaborator used by the GitHub routes.
type GitHubLogin interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*service.GitHubProfile, error)
}

type AuthHandler struct {
	authService service.AuthService
	github      GitHubLogin
	tokenTTL    time.Duration
}

// NewAuthHandler wires the session routes. github may be nil when OAuth is not configured.
func NewAuthHandler(authService service.AuthService, github GitHubLogin, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{authService: authService, github: github, tokenTTL: tokenTTL}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Register creates a local account
// POST /api/sessions/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "User registered", "data": user.ToResponse()})
}

// Login handles user authentication
// POST /api/sessions/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return c.Status(400).JSON(fiber.Map{"error": "Email and password are required"})
	}

	response, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	h.setTokenCookie(c, response.Token)
	return c.JSON(response)
}

// Logout clears the session cookie
// POST /api/sessions/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.TokenCookie)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Current returns the authenticated user
// GET /api/sessions/current
func (h *AuthHandler) Current(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	user, err := h.authService.CurrentUser(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(user.ToResponse())
}

// GitHubRedirect starts the OAuth flow
// GET /api/sessions/github
func (h *AuthHandler) GitHubRedirect(c *fiber.Ctx) error {
	if h.github == nil {
		return c.Status(404).JSON(fiber.Map{"error": "GitHub login is not configured"})
	}
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.github.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GitHubCallback finishes the OAuth flow and issues our own token
// GET /api/sessions/github/callback
func (h *AuthHandler) GitHubCallback(c *fiber.Ctx) error {
	if h.github == nil {
		return c.Status(404).JSON(fiber.Map{"error": "GitHub login is not configured"})
	}
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid OAuth state"})
	}
	c.ClearCookie(oauthStateCookie)

	profile, err := h.github.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		log.Warnf("github exchange: %v", err)
		return c.Status(401).JSON(fiber.Map{"error": "GitHub authentication failed"})
	}

	response, err := h.authService.LoginWithGitHub(profile)
	if err != nil {
		if errors.Is(err, service.ErrEmailExists) {
			return writeError(c, err)
		}
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	h.setTokenCookie(c, response.Token)
	return c.JSON(response)
}
