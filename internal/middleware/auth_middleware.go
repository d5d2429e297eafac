package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/identity"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID   = "userID"
	ContextEmail    = "userEmail"
	ContextIdentity = "identity"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier checks Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier  TokenVerifier
	directory identity.Directory
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, directory identity.Directory, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a token verifier")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, directory: directory, now: time.Now, logger: logger}
}

// SessionFromToken copies the profile claims of a verified token into a Session.
func SessionFromToken(token *auth.Token) *identity.Session {
	s := &identity.Session{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		s.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		s.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		s.PhotoURL = picture
	}
	if phone, ok := token.Claims["phone_number"].(string); ok {
		s.PhoneNumber = phone
	}
	return s
}

// VerifySession verifies a raw ID token and returns the session it carries.
func (m *AuthMiddleware) VerifySession(ctx context.Context, idToken string) (*identity.Session, error) {
	token, err := m.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return SessionFromToken(token), nil
}

// Authenticate verifies a raw ID token and resolves the member's identity.
func (m *AuthMiddleware) Authenticate(ctx context.Context, idToken string) (identity.State, error) {
	session, err := m.VerifySession(ctx, idToken)
	if err != nil {
		return identity.State{}, err
	}
	return identity.Resolve(session, m.directory, m.now()), nil
}

func bearerToken(c *gin.Context) (string, bool, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, "Authorization header is required"
	}
	// Expected format: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false, "Authorization header format must be 'Bearer {token}'"
	}
	return parts[1], true, ""
}

func setIdentity(c *gin.Context, st identity.State) {
	c.Set(ContextUserID, st.Session.UID)
	c.Set(ContextEmail, st.Session.Email)
	c.Set(ContextIdentity, st)
}

// VerifyToken is a Gin middleware handler function that verifies a Firebase ID token
// from the Authorization header. If valid, the resolved identity is stored in the Gin context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok, msg := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg})
			return
		}

		// Verifies signature, expiry and audience, then maps the session to a profile.
		st, err := m.Authenticate(c.Request.Context(), idToken)
		if err != nil {
			// The error text can carry token details; keep it in the log only.
			m.logger.Warn("Error verifying Firebase ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		// Handlers read the member through IdentityFrom or ContextUserID.
		setIdentity(c, st)
		c.Next()
	}
}

// Optional resolves the identity when a valid bearer token is present and
// otherwise lets the request through signed out.
func (m *AuthMiddleware) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, ok, _ := bearerToken(c)
		if ok {
			if st, err := m.Authenticate(c.Request.Context(), idToken); err == nil {
				setIdentity(c, st)
			} else {
				m.logger.Debug("Ignoring invalid optional token", zap.Error(err))
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by the middleware, or the signed-out state.
func IdentityFrom(c *gin.Context) identity.State {
	if v, ok := c.Get(ContextIdentity); ok {
		if st, ok := v.(identity.State); ok {
			return st
		}
	}
	return identity.State{}
}
