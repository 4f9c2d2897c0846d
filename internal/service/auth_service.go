package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// googleUserinfoURL returns the profile for the exchanged token.
const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// ErrOAuthExchange wraps any failure during the code-for-identity exchange.
var ErrOAuthExchange = errors.New("oauth exchange failed")

// sessionClaims is the signed session cookie payload: just the identity
// display fields. There is no server-side session store; the cookie is the
// whole session.
type sessionClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

// AuthService handles Google sign-in and the session cookie. The rest of
// the system only ever asks one question: is there an identity or not.
type AuthService struct {
	cfg   *config.Config
	oauth *oauth2.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// NewState returns a fresh opaque state value for one OAuth round trip.
func (s *AuthService) NewState() string {
	return uuid.New().String()
}

// AuthCodeURL builds the Google consent-screen URL for the given state.
func (s *AuthService) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for tokens and fetches the user's
// profile. Any failure along the way is wrapped in ErrOAuthExchange; the
// caller treats it as "sign-in did not happen", never as a fatal condition.
func (s *AuthService) Exchange(ctx context.Context, code string) (*model.Identity, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	client := s.oauth.Client(ctx, tok)
	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch userinfo: %v", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %s", ErrOAuthExchange, resp.Status)
	}

	var info struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrOAuthExchange, err)
	}

	return &model.Identity{Name: info.Name, Email: info.Email, Picture: info.Picture}, nil
}

// MintSession signs a session token carrying the identity display fields.
func (s *AuthService) MintSession(ident *model.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   ident.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionExpiry)),
		},
		Name:    ident.Name,
		Email:   ident.Email,
		Picture: ident.Picture,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SessionSecret))
}

// ParseSession validates a session token and returns the identity it
// carries.
func (s *AuthService) ParseSession(tokenStr string) (*model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.SessionSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}

	return &model.Identity{Name: claims.Name, Email: claims.Email, Picture: claims.Picture}, nil
}

// SessionExpiry exposes the configured cookie lifetime for Set-Cookie.
func (s *AuthService) SessionExpiry() time.Duration {
	return s.cfg.SessionExpiry
}
