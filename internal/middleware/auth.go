package middleware

import (
	"net/http"
	"os"
	"strings"

	"reqtrack/internal/permission"
	"reqtrack/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorKey = "actor"

var jwtSecret []byte

// InitJWTSecret sets the signing key used by token issuance and validation.
func InitJWTSecret(secret string) {
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	jwtSecret = []byte(secret)
}

// GetJWTSecret returns the active signing key.
func GetJWTSecret() []byte {
	if jwtSecret == nil {
		InitJWTSecret(os.Getenv("JWT_SECRET"))
	}
	return jwtSecret
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, refresh_token: 7 days
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

func extractToken(c *gin.Context) (string, bool) {
	// Try cookie first, fallback to Authorization header
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func parseActor(tokenString string) (permission.Actor, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return permission.Actor{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return permission.Actor{}, false
	}

	sub, _ := claims["sub"].(string)
	roleStr, _ := claims["role"].(string)

	id, err := uuid.Parse(sub)
	if err != nil {
		return permission.Actor{}, false
	}

	actor := permission.Actor{ID: id, Role: permission.Role(roleStr)}
	if !actor.Role.Valid() {
		return permission.Actor{}, false
	}
	return actor, true
}

// RequireAuth validates the JWT and stores the authenticated actor in the gin
// context. Any valid role passes.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		actor, ok := parseActor(tokenString)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole validates the JWT and additionally checks the actor's role
// against the allowed list.
func RequireRole(allowedRoles ...permission.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		actor, ok := parseActor(tokenString)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		allowed := false
		for _, role := range allowedRoles {
			if actor.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// ActorFrom returns the authenticated actor placed by RequireAuth/RequireRole.
func ActorFrom(c *gin.Context) (permission.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return permission.Actor{}, false
	}
	actor, ok := v.(permission.Actor)
	return actor, ok
}
