package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/middleware"
	"github.com/quizgenai/quizgen-backend/internal/response"
	"github.com/quizgenai/quizgen-backend/internal/service"
)

// oauthStateCookie pins one sign-in round trip to the browser that started
// it.
const oauthStateCookie = "quizgen_oauth_state"

// AuthHandler handles Google sign-in and session endpoints. Sign-in is
// always optional; it only changes who owns a published form.
type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

// Login godoc
// GET /api/v1/auth/google/login
// Sends the browser to the Google consent screen.
func (h *AuthHandler) Login(c *gin.Context) {
	state := h.authService.NewState()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.AuthCodeURL(state))
}

// Callback godoc
// GET /api/v1/auth/google/callback
// Finishes the OAuth round trip, mints the session cookie and sends the
// browser back to the frontend.
func (h *AuthHandler) Callback(c *gin.Context) {
	wantState, err := c.Cookie(oauthStateCookie)
	if err != nil || wantState == "" || c.Query("state") != wantState {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidOAuthState)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	ident, err := h.authService.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		response.Fail(c, http.StatusBadGateway, response.ErrOAuthExchangeFailed)
		return
	}

	token, err := h.authService.MintSession(ident)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(h.authService.SessionExpiry().Seconds()), "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.FrontendURL)
}

// Logout godoc
// POST /api/v1/auth/logout
// Clears the session cookie. There is nothing server-side to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the signed-in identity, or a null user for anonymous visitors.
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"user": middleware.GetIdentity(c),
	})
}
