package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	IdentityKey             = "identity"
)

// TokenValidator turns a bearer token into the caller's identity.
type TokenValidator interface {
	ValidateToken(token string) (*domain.Identity, error)
}

type AuthMiddleware struct {
	validator TokenValidator
	log       *zerolog.Logger
}

func NewAuthMiddleware(validator TokenValidator, log *zerolog.Logger) *AuthMiddleware {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &AuthMiddleware{validator: validator, log: log}
}

// Authenticate validates the bearer token and stores the identity in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		identity, err := m.validator.ValidateToken(fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is invalid or expired", "details": err.Error()})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// AuthorizeRole lets the request through only for the listed roles.
func (m *AuthMiddleware) AuthorizeRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			m.log.Warn().Str("path", c.FullPath()).Msg("AuthorizeRole: no identity in context, Authenticate must run first")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied (missing role)"})
			return
		}

		for _, role := range requiredRoles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		m.log.Info().
			Int("user_id", identity.UserID).
			Str("role", identity.Role).
			Strs("required", requiredRoles).
			Msg("AuthorizeRole: role not permitted")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied (role not permitted)"})
	}
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c *gin.Context) (*domain.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*domain.Identity)
	return identity, ok && identity != nil
}
