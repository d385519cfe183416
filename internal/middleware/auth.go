package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"portal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by RequireRole.
const (
	CtxUserID          = "userID"
	CtxUserRole        = "userRole"
	CtxUserName        = "userName"
	CtxUserDesignation = "userDesignation"
)

const devJWTSecret = "default_super_secret_key"

var (
	secretMu  sync.RWMutex
	jwtSecret []byte
)

// SetJWTSecret installs the HMAC key used to verify tokens.
func SetJWTSecret(secret string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	jwtSecret = []byte(secret)
}

// GetJWTSecret returns the configured key, or a development fallback when none is set.
// Release mode refuses an empty secret at config load.
func GetJWTSecret() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if len(jwtSecret) == 0 {
		return []byte(devJWTSecret)
	}
	return jwtSecret
}

// Claims carries the identity the portal reads from an access token.
type Claims struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Designation string `json:"designation"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HMAC-signed token and returns its claims.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func extractToken(c *gin.Context) (string, string) {
	// Try cookie first, fallback to Authorization header
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, ""
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization is missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization format. Expected 'Bearer <token>'"
	}
	return parts[1], ""
}

// RequireRole Middleware validates the JWT token and checks if the user's role exists in the allowedRoles list
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := extractToken(c)
		if problem != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, problem))
			return
		}

		claims, err := ParseToken(tokenString, GetJWTSecret())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		if claims.Role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
			return
		}

		roleAllowed := false
		for _, role := range allowedRoles {
			if claims.Role == role {
				roleAllowed = true
				break
			}
		}
		if !roleAllowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxUserRole, claims.Role)
		c.Set(CtxUserName, claims.Name)
		c.Set(CtxUserDesignation, claims.Designation)

		c.Next()
	}
}

// Identity is the caller as established by RequireRole.
type Identity struct {
	ID          string
	Role        string
	Name        string
	Designation string
}

// CurrentUser reads the identity RequireRole stored on the context.
func CurrentUser(c *gin.Context) Identity {
	return Identity{
		ID:          c.GetString(CtxUserID),
		Role:        c.GetString(CtxUserRole),
		Name:        c.GetString(CtxUserName),
		Designation: c.GetString(CtxUserDesignation),
	}
}

// SignToken issues an HS256 token for claims. Login lives outside the portal;
// this backs the CLI's development tokens and tests.
func SignToken(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
