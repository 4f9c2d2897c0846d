package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/quizgenai/quizgen-backend/internal/model"
	"github.com/quizgenai/quizgen-backend/internal/service"
)

// ContextKeyIdentity is the Gin context key for the signed-in identity.
const ContextKeyIdentity = "identity"

// SessionCookieName carries the signed identity token.
const SessionCookieName = "quizgen_session"

// AttachIdentity reads the session cookie and, when it parses, stores the
// identity in the request context. It never aborts: a missing, expired or
// malformed cookie just means "not signed in", and the wizard works fine
// anonymously.
func AttachIdentity(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			if ident, err := authService.ParseSession(raw); err == nil {
				c.Set(ContextKeyIdentity, ident)
			}
		}
		c.Next()
	}
}

// GetIdentity returns the signed-in identity from the Gin context, or nil
// when the request is anonymous.
func GetIdentity(c *gin.Context) *model.Identity {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return nil
	}
	ident, ok := val.(*model.Identity)
	if !ok {
		return nil
	}
	return ident
}
