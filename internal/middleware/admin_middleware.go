package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"pymepos-backend-go/internal/models"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// accountReader is the slice of the account repository the admin gate needs.
type accountReader interface {
	GetByID(ctx context.Context, uid string) (*models.Account, error)
}

// AdminMiddleware gates admin-only routes: it verifies a Firebase ID token
// from the Authorization header, then checks the account's role fresh from
// the store on every request.
type AdminMiddleware struct {
	firebaseAuthClient *auth.Client
	accounts           accountReader
}

// NewAdminMiddleware creates an AdminMiddleware instance.
func NewAdminMiddleware(fbAuthClient *auth.Client, accounts accountReader) *AdminMiddleware {
	if fbAuthClient == nil {
		panic("Firebase Auth client is not initialized for AdminMiddleware")
	}
	return &AdminMiddleware{firebaseAuthClient: fbAuthClient, accounts: accounts}
}

// RequireAdmin verifies the bearer token and the admin role, and sets
// "adminID" in the Gin context for downstream handlers.
func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		account, err := m.accounts.GetByID(c.Request.Context(), token.UID)
		if err != nil || account.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin role required"})
			return
		}

		c.Set("adminID", token.UID)
		c.Next()
	}
}
